package testgateway

import (
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/filex"
)

// ImageBaseURL prefixes the URLs of uploaded post images.
const ImageBaseURL = "https://cdn.quzhan.test/posts/"

const defaultPageSize = 10

func (p *post) summary() models.Post {
	return models.Post{
		ID:             p.detail.ID,
		Title:          p.detail.Title,
		AuthorID:       p.detail.AuthorID,
		AuthorUsername: p.detail.AuthorUsername,
		AuthorAvatar:   p.detail.AuthorAvatar,
		Status:         p.status,
		AuditReason:    p.auditReason,
		OfficialTag:    p.detail.OfficialTag,
		ViewCount:      p.detail.ViewCount,
		CreatedAt:      p.detail.CreatedAt,
		UpdatedAt:      p.detail.UpdatedAt,
	}
}

func summaries(ps []*post) []models.Post {
	out := make([]models.Post, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.summary())
	}
	return out
}

func queryInt(r *http.Request, key string, def int64) int64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func isAdmin(a *account) bool {
	return a.profile.UserRole != nil && *a.profile.UserRole == models.RoleAdmin
}

// newestFirst orders by creation time then id, both descending.
func newestFirst(a, b *post) int {
	if c := b.createdAt.Compare(a.createdAt); c != 0 {
		return c
	}
	return int(b.detail.ID - a.detail.ID)
}

// AddPost stores a post directly and returns its id.
func (g *Gateway) AddPost(authorID, title, content string, status models.PostStatus) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	author := g.users[authorID]
	detail := models.PostDetail{Title: title, Content: content, AuthorID: authorID}
	if author != nil {
		detail.AuthorUsername = author.profile.Nickname
		detail.AuthorAvatar = author.profile.AvatarURL
	}
	return g.addPostLocked(detail, status)
}

// SetViews overrides the view counter of a post.
func (g *Gateway) SetViews(id, views int64) {
	g.mu.Lock()
	if p, found := g.posts[id]; found {
		p.detail.ViewCount = views
	}
	g.mu.Unlock()
}

func (g *Gateway) addPostLocked(detail models.PostDetail, status models.PostStatus) int64 {
	g.nextPost++
	now := g.now().UTC()
	detail.ID = g.nextPost
	detail.CreatedAt = now.Format(time.RFC3339Nano)
	detail.UpdatedAt = detail.CreatedAt
	g.posts[detail.ID] = &post{detail: detail, status: status, createdAt: now}
	return detail.ID
}

func (g *Gateway) createPost(w http.ResponseWriter, r *http.Request, a *account) {
	if err := r.ParseMultipartForm(filex.MaxUploadSize); err != nil {
		badRequest(w, "invalid multipart body")
		return
	}
	form := r.MultipartForm

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		badRequest(w, "title is required")
		return
	}
	price, _ := strconv.ParseFloat(r.FormValue("price_per_unit"), 64)

	g.mu.Lock()
	detail := models.PostDetail{
		Title:          title,
		Content:        r.FormValue("content"),
		ContactInfo:    r.FormValue("contact_info"),
		PricePerUnit:   price,
		AuthorID:       a.id,
		AuthorUsername: a.profile.Nickname,
		AuthorAvatar:   a.profile.AvatarURL,
	}
	g.mu.Unlock()

	if v := r.FormValue("author_username"); v != "" {
		detail.AuthorUsername = v
	}
	if v := r.FormValue("author_avatar"); v != "" {
		detail.AuthorAvatar = v
	}

	for i, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			badRequest(w, "unreadable image")
			return
		}
		_, err = io.Copy(io.Discard, f)
		_ = f.Close()
		if err != nil {
			badRequest(w, "unreadable image")
			return
		}
		detail.Images = append(detail.Images, models.PostImage{
			ImageURL:     ImageBaseURL + a.id + "/" + fh.Filename,
			DisplayOrder: i,
			ObjectKey:    a.id + "/" + fh.Filename,
		})
	}

	g.mu.Lock()
	id := g.addPostLocked(detail, models.PostPending)
	p := g.posts[id].summary()
	g.mu.Unlock()

	writeOK(w, p)
}

func (g *Gateway) getPost(w http.ResponseWriter, r *http.Request, a *account) {
	id := pathID(r)

	g.mu.Lock()
	p, found := g.posts[id]
	if found && p.status != models.PostApproved && p.detail.AuthorID != a.id && !isAdmin(a) {
		found = false
	}
	var detail models.PostDetail
	if found {
		p.detail.ViewCount++
		detail = p.detail
	}
	g.mu.Unlock()

	if !found {
		writeEnvelope(w, http.StatusNotFound, CodeNotFound, "post not found", nil)
		return
	}
	writeOK(w, detail)
}

func (g *Gateway) deletePost(w http.ResponseWriter, r *http.Request, a *account) {
	id := pathID(r)

	g.mu.Lock()
	p, found := g.posts[id]
	switch {
	case !found:
		g.mu.Unlock()
		writeEnvelope(w, http.StatusNotFound, CodeNotFound, "post not found", nil)
		return
	case p.detail.AuthorID != a.id && !isAdmin(a):
		g.mu.Unlock()
		writeEnvelope(w, http.StatusForbidden, CodeForbidden, "not the author", nil)
		return
	}
	delete(g.posts, id)
	g.mu.Unlock()

	writeOK(w, nil)
}

func (g *Gateway) approved(filter func(*post) bool) []*post {
	var out []*post
	for _, p := range g.posts {
		if p.status != models.PostApproved {
			continue
		}
		if filter != nil && !filter(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (g *Gateway) timeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageSize := int(queryInt(r, "page_size", defaultPageSize))
	lastID := queryInt(r, "last_post_id", 0)
	title := strings.ToLower(q.Get("title"))
	author := q.Get("author_username")

	var (
		lastCreated time.Time
		hasCursor   bool
	)
	if v := q.Get("last_created_at"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			badRequest(w, "invalid last_created_at")
			return
		}
		lastCreated, hasCursor = t, true
	}

	g.mu.Lock()
	posts := g.approved(func(p *post) bool {
		if q.Has("official_tag") && strconv.Itoa(int(p.detail.OfficialTag)) != q.Get("official_tag") {
			return false
		}
		if title != "" && !strings.Contains(strings.ToLower(p.detail.Title), title) {
			return false
		}
		if author != "" && p.detail.AuthorUsername != author {
			return false
		}
		return true
	})
	slices.SortFunc(posts, newestFirst)

	page := make([]*post, 0, pageSize)
	for _, p := range posts {
		if hasCursor {
			c := p.createdAt.Compare(lastCreated)
			if c > 0 || (c == 0 && p.detail.ID >= lastID) {
				continue
			}
		}
		if len(page) == pageSize {
			break
		}
		page = append(page, p)
	}

	resp := models.TimelinePage{Posts: summaries(page)}
	if n := len(page); n > 0 {
		resp.NextCreatedAt = page[n-1].createdAt.Format(time.RFC3339Nano)
		resp.NextPostID = page[n-1].detail.ID
	}
	g.mu.Unlock()

	writeOK(w, resp)
}

func (g *Gateway) minePosts(w http.ResponseWriter, r *http.Request, a *account) {
	q := r.URL.Query()
	page := max(int(queryInt(r, "page", 1)), 1)
	pageSize := int(queryInt(r, "page_size", defaultPageSize))
	title := strings.ToLower(q.Get("title"))

	g.mu.Lock()
	var mine []*post
	for _, p := range g.posts {
		if p.detail.AuthorID != a.id {
			continue
		}
		if q.Has("status") && strconv.Itoa(int(p.status)) != q.Get("status") {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(p.detail.Title), title) {
			continue
		}
		mine = append(mine, p)
	}
	slices.SortFunc(mine, newestFirst)
	resp := models.PostList{Posts: summaries(pageOf(mine, page, pageSize)), Total: int64(len(mine))}
	g.mu.Unlock()

	writeOK(w, resp)
}

func pageOf(ps []*post, page, size int) []*post {
	if size <= 0 {
		size = defaultPageSize
	}
	start := (page - 1) * size
	if start >= len(ps) {
		return nil
	}
	return ps[start:min(start+size, len(ps))]
}

// afterID returns up to size posts following the one with id cursor (from
// the start when cursor is 0) and the next cursor, if any.
func afterID(ps []*post, cursor int64, size int) ([]*post, *int64) {
	if size <= 0 {
		size = defaultPageSize
	}
	start := 0
	if cursor != 0 {
		start = len(ps)
		for i, p := range ps {
			if p.detail.ID == cursor {
				start = i + 1
				break
			}
		}
	}
	end := min(start+size, len(ps))
	page := ps[start:end]
	if end < len(ps) && len(page) > 0 {
		next := page[len(page)-1].detail.ID
		return page, &next
	}
	return page, nil
}

func (g *Gateway) byAuthor(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		badRequest(w, "user_id is required")
		return
	}

	g.mu.Lock()
	posts := g.approved(func(p *post) bool { return p.detail.AuthorID == userID })
	slices.SortFunc(posts, newestFirst)
	page, next := afterID(posts, queryInt(r, "cursor", 0), int(queryInt(r, "page_size", defaultPageSize)))
	resp := models.CursorPage{Posts: summaries(page), NextCursor: next}
	g.mu.Unlock()

	writeOK(w, resp)
}

func (g *Gateway) hotPosts(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	posts := g.approved(nil)
	slices.SortFunc(posts, func(a, b *post) int {
		if a.detail.ViewCount != b.detail.ViewCount {
			if a.detail.ViewCount > b.detail.ViewCount {
				return -1
			}
			return 1
		}
		return int(b.detail.ID - a.detail.ID)
	})
	page, next := afterID(posts, queryInt(r, "last_post_id", 0), int(queryInt(r, "limit", defaultPageSize)))
	resp := models.CursorPage{Posts: summaries(page), NextCursor: next}
	g.mu.Unlock()

	writeOK(w, resp)
}
