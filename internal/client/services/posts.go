package services

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/quzhan/internal/client/client"
	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/client/pager"
	"github.com/dmitrijs2005/quzhan/internal/filex"
)

const (
	postsPath    = "/api/v1/post/posts"
	postPath     = "/api/v1/post/posts/{id}"
	timelinePath = "/api/v1/post/posts/timeline"
	minePath     = "/api/v1/post/posts/mine"
	byAuthorPath = "/api/v1/post/posts/by-author"
	hotPostsPath = "/api/v1/post/hot-posts"
)

type PostService interface {
	Create(ctx context.Context, post models.NewPost, images []*filex.Upload) (*models.Post, error)
	Get(ctx context.Context, id int64) (*models.PostDetail, error)
	Delete(ctx context.Context, id int64) error
	Timeline(ctx context.Context, cursor pager.Position, pageSize int, filter models.TimelineFilter) (*models.TimelinePage, error)
	Mine(ctx context.Context, page, pageSize int, title string, status *models.PostStatus) (*models.PostList, error)
	ByAuthor(ctx context.Context, userID string, cursor int64, pageSize int) (*models.CursorPage, error)
	Hot(ctx context.Context, lastPostID int64, limit int) (*models.CursorPage, error)
}

type postService struct {
	client *client.Client
}

func NewPostService(c *client.Client) PostService {
	return &postService{client: c}
}

func (p *postService) do(ctx context.Context, req *client.Request, out any) error {
	return p.client.Do(ctx, p.client.Services.PostService, req, out)
}

// Create publishes a post for moderation. Images are sent as repeated
// "images" parts.
func (p *postService) Create(ctx context.Context, post models.NewPost, images []*filex.Upload) (*models.Post, error) {
	form := map[string]any{
		"title":          post.Title,
		"content":        post.Content,
		"price_per_unit": post.PricePerUnit,
		"contact_info":   post.ContactInfo,
	}
	setIf(form, "author_id", post.AuthorID)
	setIf(form, "author_avatar", post.AuthorAvatar)
	setIf(form, "author_username", post.AuthorUsername)
	if len(images) > 0 {
		form["images"] = images
	}

	var out models.Post
	if err := p.do(ctx, &client.Request{Method: http.MethodPost, Path: postsPath, FormData: form}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *postService) Get(ctx context.Context, id int64) (*models.PostDetail, error) {
	var out models.PostDetail
	err := p.do(ctx, &client.Request{
		Method:     http.MethodGet,
		Path:       postPath,
		PathParams: map[string]any{"id": id},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *postService) Delete(ctx context.Context, id int64) error {
	return p.do(ctx, &client.Request{
		Method:     http.MethodDelete,
		Path:       postPath,
		PathParams: map[string]any{"id": id},
	}, nil)
}

func (p *postService) Timeline(ctx context.Context, cursor pager.Position, pageSize int, filter models.TimelineFilter) (*models.TimelinePage, error) {
	q := map[string]any{"page_size": pageSize}
	setIf(q, "last_created_at", cursor.LastCreatedAt)
	if cursor.LastPostID != 0 {
		q["last_post_id"] = cursor.LastPostID
	}
	if filter.OfficialTag != nil {
		q["official_tag"] = int(*filter.OfficialTag)
	}
	setIf(q, "title", filter.Title)
	setIf(q, "author_username", filter.AuthorUsername)

	var out models.TimelinePage
	if err := p.do(ctx, &client.Request{Method: http.MethodGet, Path: timelinePath, Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *postService) Mine(ctx context.Context, page, pageSize int, title string, status *models.PostStatus) (*models.PostList, error) {
	q := map[string]any{"page": page, "page_size": pageSize}
	setIf(q, "title", title)
	if status != nil {
		q["status"] = int(*status)
	}

	var out models.PostList
	if err := p.do(ctx, &client.Request{Method: http.MethodGet, Path: minePath, Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *postService) ByAuthor(ctx context.Context, userID string, cursor int64, pageSize int) (*models.CursorPage, error) {
	q := map[string]any{"user_id": userID, "page_size": pageSize}
	if cursor != 0 {
		q["cursor"] = cursor
	}

	var out models.CursorPage
	if err := p.do(ctx, &client.Request{Method: http.MethodGet, Path: byAuthorPath, Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *postService) Hot(ctx context.Context, lastPostID int64, limit int) (*models.CursorPage, error) {
	q := map[string]any{"limit": limit}
	if lastPostID != 0 {
		q["last_post_id"] = lastPostID
	}

	var out models.CursorPage
	if err := p.do(ctx, &client.Request{Method: http.MethodGet, Path: hotPostsPath, Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func setIf(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
