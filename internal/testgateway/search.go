package testgateway

import (
	"cmp"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
)

const fragmentRadius = 20

// highlight wraps every case-insensitive occurrence of term in <em> tags.
// It returns false when term does not occur.
func highlight(text, term string) (string, bool) {
	lower := strings.ToLower(text)
	t := strings.ToLower(term)
	if t == "" || !strings.Contains(lower, t) {
		return "", false
	}

	var b strings.Builder
	for {
		i := strings.Index(lower, t)
		if i < 0 {
			b.WriteString(text)
			return b.String(), true
		}
		b.WriteString(text[:i])
		b.WriteString("<em>")
		b.WriteString(text[i : i+len(t)])
		b.WriteString("</em>")
		text, lower = text[i+len(t):], lower[i+len(t):]
	}
}

// fragment cuts a window of text around the first occurrence of term.
func fragment(text, term string) string {
	i := strings.Index(strings.ToLower(text), strings.ToLower(term))
	if i < 0 {
		return ""
	}
	start := max(i-fragmentRadius, 0)
	end := min(i+len(term)+fragmentRadius, len(text))
	// Stay on rune boundaries.
	for start > 0 && !isRuneStart(text[start]) {
		start--
	}
	for end < len(text) && !isRuneStart(text[end]) {
		end++
	}
	frag, _ := highlight(text[start:end], term)
	return frag
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func (g *Gateway) search(w http.ResponseWriter, r *http.Request) {
	began := time.Now()
	q := r.URL.Query()
	term := strings.TrimSpace(q.Get("q"))
	if term == "" {
		badRequest(w, "q is required")
		return
	}
	page := max(int(queryInt(r, "page", 1)), 1)
	size := int(queryInt(r, "size", defaultPageSize))
	if size <= 0 {
		size = defaultPageSize
	}

	g.mu.Lock()
	g.searches[strings.ToLower(term)]++

	type match struct {
		p   *post
		hit models.SearchHit
		// score counts matched fields
		score int
	}
	var matches []match
	for _, p := range g.approved(nil) {
		hl := map[string][]string{}
		score := 0
		if t, ok := highlight(p.detail.Title, term); ok {
			hl["title"] = []string{t}
			score += 2
		}
		if f := fragment(p.detail.Content, term); f != "" {
			hl["content"] = []string{f}
			score++
		}
		if score == 0 {
			continue
		}
		d := p.detail
		matches = append(matches, match{p: p, score: score, hit: models.SearchHit{
			ID:             d.ID,
			Title:          d.Title,
			Content:        d.Content,
			AuthorID:       d.AuthorID,
			AuthorUsername: d.AuthorUsername,
			AuthorAvatar:   d.AuthorAvatar,
			ContactInfo:    d.ContactInfo,
			PricePerUnit:   d.PricePerUnit,
			OfficialTag:    d.OfficialTag,
			Status:         p.status,
			ViewCount:      d.ViewCount,
			CreatedAt:      p.createdAt.UnixMilli(),
			UpdatedAt:      d.UpdatedAt,
			Images:         d.Images,
			Highlights:     hl,
		}})
	}
	g.mu.Unlock()

	desc := q.Get("sort_order") != "asc"
	slices.SortFunc(matches, func(a, b match) int {
		var c int
		switch q.Get("sort_by") {
		case "created_at":
			c = a.p.createdAt.Compare(b.p.createdAt)
		case "view_count":
			c = cmp.Compare(a.hit.ViewCount, b.hit.ViewCount)
		default:
			c = cmp.Compare(a.score, b.score)
		}
		if c == 0 {
			c = cmp.Compare(a.hit.ID, b.hit.ID)
		}
		if desc {
			return -c
		}
		return c
	})

	res := models.SearchResult{Page: page, Size: size, Total: int64(len(matches))}
	start := (page - 1) * size
	for i := start; i < len(matches) && i < start+size; i++ {
		res.Hits = append(res.Hits, matches[i].hit)
	}
	res.TookMs = time.Since(began).Milliseconds()

	writeOK(w, res)
}

func (g *Gateway) hotTerms(w http.ResponseWriter, r *http.Request) {
	limit := int(queryInt(r, "limit", defaultPageSize))

	g.mu.Lock()
	terms := make([]models.HotTerm, 0, len(g.searches))
	for t, n := range g.searches {
		terms = append(terms, models.HotTerm{Term: t, Count: n})
	}
	g.mu.Unlock()

	slices.SortFunc(terms, func(a, b models.HotTerm) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Term, b.Term)
	})
	if limit > 0 && len(terms) > limit {
		terms = terms[:limit]
	}
	writeOK(w, terms)
}
