package models

// SearchHit is a post document from the search index with optional
// highlighted fragments keyed by field ("title", "content").
type SearchHit struct {
	ID             int64               `json:"id"`
	Title          string              `json:"title"`
	Content        string              `json:"content,omitempty"`
	AuthorID       string              `json:"author_id,omitempty"`
	AuthorUsername string              `json:"author_username,omitempty"`
	AuthorAvatar   string              `json:"author_avatar,omitempty"`
	ContactInfo    string              `json:"contact_info,omitempty"`
	PricePerUnit   float64             `json:"price_per_unit,omitempty"`
	OfficialTag    OfficialTag         `json:"official_tag"`
	Status         PostStatus          `json:"status"`
	ViewCount      int64               `json:"view_count"`
	CreatedAt      int64               `json:"created_at,omitempty"`
	UpdatedAt      string              `json:"updated_at,omitempty"`
	Images         []PostImage         `json:"images,omitempty"`
	Highlights     map[string][]string `json:"highlights,omitempty"`
}

// DisplayTitle prefers the highlighted title fragments.
func (h *SearchHit) DisplayTitle() string {
	if frags := h.Highlights["title"]; len(frags) > 0 {
		return joinFragments(frags)
	}
	if h.Title == "" {
		return "(untitled)"
	}
	return h.Title
}

// Snippet prefers highlighted content fragments and falls back to the first
// max runes of the content.
func (h *SearchHit) Snippet(max int) string {
	if frags := h.Highlights["content"]; len(frags) > 0 {
		return joinFragments(frags)
	}
	r := []rune(h.Content)
	if max > 0 && len(r) > max {
		return string(r[:max]) + "..."
	}
	return h.Content
}

func joinFragments(frags []string) string {
	out := frags[0]
	for _, f := range frags[1:] {
		out += " ... " + f
	}
	return out
}

type SearchResult struct {
	Hits   []SearchHit `json:"hits"`
	Page   int         `json:"page"`
	Size   int         `json:"size"`
	TookMs int64       `json:"took_ms"`
	Total  int64       `json:"total"`
}

// SearchQuery holds the parameters of a full-text search.
type SearchQuery struct {
	Q         string
	Page      int
	Size      int
	SortBy    string
	SortOrder string
}

type HotTerm struct {
	Term  string `json:"term"`
	Count int64  `json:"count,omitempty"`
}
