package testgateway

import (
	"cmp"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
)

func (g *Gateway) adminList(w http.ResponseWriter, r *http.Request, _ *account) {
	q := r.URL.Query()
	page := max(int(queryInt(r, "page", 1)), 1)
	pageSize := int(queryInt(r, "page_size", defaultPageSize))
	id := queryInt(r, "id", 0)
	title := strings.ToLower(q.Get("title"))
	author := q.Get("author_username")
	minViews := queryInt(r, "view_count_min", -1)
	maxViews := queryInt(r, "view_count_max", -1)

	g.mu.Lock()
	var posts []*post
	for _, p := range g.posts {
		switch {
		case id != 0 && p.detail.ID != id:
		case title != "" && !strings.Contains(strings.ToLower(p.detail.Title), title):
		case author != "" && p.detail.AuthorUsername != author:
		case q.Has("status") && strconv.Itoa(int(p.status)) != q.Get("status"):
		case q.Has("official_tag") && strconv.Itoa(int(p.detail.OfficialTag)) != q.Get("official_tag"):
		case minViews >= 0 && p.detail.ViewCount < minViews:
		case maxViews >= 0 && p.detail.ViewCount > maxViews:
		default:
			posts = append(posts, p)
		}
	}

	desc := q.Get("order_desc") == "true"
	slices.SortFunc(posts, func(a, b *post) int {
		var c int
		switch q.Get("order_by") {
		case "view_count":
			c = cmp.Compare(a.detail.ViewCount, b.detail.ViewCount)
		case "created_at":
			c = a.createdAt.Compare(b.createdAt)
		}
		if c == 0 {
			c = cmp.Compare(a.detail.ID, b.detail.ID)
		}
		if desc {
			return -c
		}
		return c
	})
	resp := models.PostList{Posts: summaries(pageOf(posts, page, pageSize)), Total: int64(len(posts))}
	g.mu.Unlock()

	writeOK(w, resp)
}

func (g *Gateway) adminAudit(w http.ResponseWriter, r *http.Request, _ *account) {
	var req models.AuditRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}
	if req.Status == models.PostRejected && strings.TrimSpace(req.Reason) == "" {
		badRequest(w, "reason is required when rejecting")
		return
	}

	g.mu.Lock()
	p, found := g.posts[req.PostID]
	if found {
		p.status = req.Status
		p.auditReason = req.Reason
	}
	g.mu.Unlock()

	if !found {
		writeEnvelope(w, http.StatusNotFound, CodeNotFound, "post not found", nil)
		return
	}
	writeOK(w, nil)
}

func (g *Gateway) adminTag(w http.ResponseWriter, r *http.Request, _ *account) {
	var req models.OfficialTagRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}

	g.mu.Lock()
	p, found := g.posts[pathID(r)]
	if found {
		p.detail.OfficialTag = req.OfficialTag
	}
	g.mu.Unlock()

	if !found {
		writeEnvelope(w, http.StatusNotFound, CodeNotFound, "post not found", nil)
		return
	}
	writeOK(w, nil)
}

func (g *Gateway) adminDelete(w http.ResponseWriter, r *http.Request, _ *account) {
	id := pathID(r)

	g.mu.Lock()
	_, found := g.posts[id]
	delete(g.posts, id)
	g.mu.Unlock()

	if !found {
		writeEnvelope(w, http.StatusNotFound, CodeNotFound, "post not found", nil)
		return
	}
	writeOK(w, nil)
}
