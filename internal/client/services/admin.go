package services

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/quzhan/internal/client/client"
	"github.com/dmitrijs2005/quzhan/internal/client/models"
)

const (
	adminPostsPath = "/api/v1/post/admin/posts"
	adminAuditPath = "/api/v1/post/admin/posts/audit"
	adminPostPath  = "/api/v1/post/admin/posts/{id}"
	adminTagPath   = "/api/v1/post/admin/posts/{id}/official-tag"
)

// AdminService holds the moderation endpoints. The gateway rejects them
// for non-admin users.
type AdminService interface {
	List(ctx context.Context, filter models.AdminFilter, page, pageSize int) (*models.PostList, error)
	Audit(ctx context.Context, postID int64, status models.PostStatus, reason string) error
	SetOfficialTag(ctx context.Context, postID int64, tag models.OfficialTag) error
	Delete(ctx context.Context, postID int64) error
}

type adminService struct {
	client *client.Client
}

func NewAdminService(c *client.Client) AdminService {
	return &adminService{client: c}
}

func (a *adminService) do(ctx context.Context, req *client.Request, out any) error {
	return a.client.Do(ctx, a.client.Services.PostService, req, out)
}

func (a *adminService) List(ctx context.Context, f models.AdminFilter, page, pageSize int) (*models.PostList, error) {
	q := map[string]any{
		"page":           page,
		"page_size":      pageSize,
		"status":         f.Status,
		"official_tag":   f.OfficialTag,
		"view_count_min": f.ViewCountMin,
		"view_count_max": f.ViewCountMax,
	}
	if f.ID != 0 {
		q["id"] = f.ID
	}
	setIf(q, "title", f.Title)
	setIf(q, "author_username", f.AuthorUsername)
	setIf(q, "order_by", f.OrderBy)
	if f.OrderDesc {
		q["order_desc"] = true
	}

	var out models.PostList
	if err := a.do(ctx, &client.Request{Method: http.MethodGet, Path: adminPostsPath, Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *adminService) Audit(ctx context.Context, postID int64, status models.PostStatus, reason string) error {
	return a.do(ctx, &client.Request{
		Method: http.MethodPost,
		Path:   adminAuditPath,
		Body:   models.AuditRequest{PostID: postID, Status: status, Reason: reason},
	}, nil)
}

func (a *adminService) SetOfficialTag(ctx context.Context, postID int64, tag models.OfficialTag) error {
	return a.do(ctx, &client.Request{
		Method:     http.MethodPut,
		Path:       adminTagPath,
		PathParams: map[string]any{"id": postID},
		Body:       models.OfficialTagRequest{OfficialTag: tag},
	}, nil)
}

func (a *adminService) Delete(ctx context.Context, postID int64) error {
	return a.do(ctx, &client.Request{
		Method:     http.MethodDelete,
		Path:       adminPostPath,
		PathParams: map[string]any{"id": postID},
	}, nil)
}
