package models

// PostStatus is the moderation state of a post.
type PostStatus int

const (
	PostPending  PostStatus = 0
	PostApproved PostStatus = 1
	PostRejected PostStatus = 2
)

func (s PostStatus) String() string {
	switch s {
	case PostPending:
		return "pending"
	case PostApproved:
		return "approved"
	case PostRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// OfficialTag marks posts promoted by moderators. 0 means none.
type OfficialTag int

const (
	TagNone     OfficialTag = 0
	TagOfficial OfficialTag = 1
	TagPinned   OfficialTag = 2
)

// Post is the list representation of a post.
type Post struct {
	ID             int64       `json:"id"`
	Title          string      `json:"title"`
	AuthorID       string      `json:"author_id,omitempty"`
	AuthorUsername string      `json:"author_username,omitempty"`
	AuthorAvatar   string      `json:"author_avatar,omitempty"`
	Status         PostStatus  `json:"status"`
	AuditReason    string      `json:"audit_reason,omitempty"`
	OfficialTag    OfficialTag `json:"official_tag"`
	ViewCount      int64       `json:"view_count"`
	CreatedAt      string      `json:"created_at,omitempty"`
	UpdatedAt      string      `json:"updated_at,omitempty"`
}

type PostImage struct {
	ImageURL     string `json:"image_url"`
	DisplayOrder int    `json:"display_order"`
	ObjectKey    string `json:"object_key,omitempty"`
}

// PostDetail is returned by the single-post endpoints.
type PostDetail struct {
	ID             int64       `json:"id"`
	Title          string      `json:"title"`
	Content        string      `json:"content"`
	ContactInfo    string      `json:"contact_info,omitempty"`
	PricePerUnit   float64     `json:"price_per_unit"`
	AuthorID       string      `json:"author_id,omitempty"`
	AuthorUsername string      `json:"author_username,omitempty"`
	AuthorAvatar   string      `json:"author_avatar,omitempty"`
	Images         []PostImage `json:"images,omitempty"`
	OfficialTag    OfficialTag `json:"official_tag"`
	ViewCount      int64       `json:"view_count"`
	CreatedAt      string      `json:"created_at,omitempty"`
	UpdatedAt      string      `json:"updated_at,omitempty"`
}

// TimelinePage is one page of the cursor-paginated timeline.
type TimelinePage struct {
	NextCreatedAt string `json:"nextCreatedAt"`
	NextPostID    int64  `json:"nextPostId"`
	Posts         []Post `json:"posts"`
}

// CursorPage is returned by the hot-posts and by-author listings.
type CursorPage struct {
	Posts      []Post `json:"posts"`
	NextCursor *int64 `json:"next_cursor,omitempty"`
}

// PostList is a page-number paginated listing with a total count.
type PostList struct {
	Posts []Post `json:"posts"`
	Total int64  `json:"total"`
}

// TimelineFilter narrows the timeline. Zero values are not sent.
type TimelineFilter struct {
	OfficialTag    *OfficialTag
	Title          string
	AuthorUsername string
}

// NewPost is the multipart body of a post creation.
type NewPost struct {
	Title          string
	Content        string
	PricePerUnit   float64
	ContactInfo    string
	AuthorID       string
	AuthorAvatar   string
	AuthorUsername string
}

type AuditRequest struct {
	PostID int64      `json:"post_id"`
	Status PostStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

type OfficialTagRequest struct {
	OfficialTag OfficialTag `json:"official_tag"`
}

// AdminFilter narrows the moderation listing. Zero values are not sent.
type AdminFilter struct {
	ID             int64
	Title          string
	AuthorUsername string
	Status         *PostStatus
	OfficialTag    *OfficialTag
	ViewCountMin   *int64
	ViewCountMax   *int64
	OrderBy        string
	OrderDesc      bool
}
