package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/quzhan/internal/client/client"
	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/client/session"
	"github.com/dmitrijs2005/quzhan/internal/filex"
)

const (
	profilePath = "/api/v1/user-hub/profile"
	avatarPath  = "/api/v1/user-hub/profile/avatar"
)

// ProfileService reads and edits the logged-in user's profile. Successful
// mutations refresh the user held by the session.
type ProfileService interface {
	Get(ctx context.Context) (*models.AccountDetail, error)
	Update(ctx context.Context, req models.UpdateProfileRequest) (*models.AccountDetail, error)
	UploadAvatar(ctx context.Context, avatar *filex.Upload) (string, error)
}

type profileService struct {
	client  *client.Client
	session *session.Session
}

func NewProfileService(c *client.Client, sess *session.Session) ProfileService {
	return &profileService{client: c, session: sess}
}

func fetchProfile(ctx context.Context, c *client.Client) (*models.AccountDetail, error) {
	var detail models.AccountDetail
	err := c.Do(ctx, c.Services.UserHub, &client.Request{Method: http.MethodGet, Path: profilePath}, &detail)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (p *profileService) Get(ctx context.Context) (*models.AccountDetail, error) {
	return fetchProfile(ctx, p.client)
}

func (p *profileService) Update(ctx context.Context, req models.UpdateProfileRequest) (*models.AccountDetail, error) {
	var detail models.AccountDetail
	err := p.client.Do(ctx, p.client.Services.UserHub, &client.Request{
		Method: http.MethodPut,
		Path:   profilePath,
		Body:   req,
	}, &detail)
	if err != nil {
		return nil, err
	}

	if detail.UserID == "" {
		return p.reload(ctx)
	}
	if err := p.session.SetUserAndToken(ctx, detail.ToUser(), nil); err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}
	return &detail, nil
}

// UploadAvatar sends the image as the multipart field "avatar" and returns
// the new avatar URL.
func (p *profileService) UploadAvatar(ctx context.Context, avatar *filex.Upload) (string, error) {
	var out struct {
		AvatarURL string `json:"avatar_url"`
	}
	err := p.client.Do(ctx, p.client.Services.UserHub, &client.Request{
		Method:   http.MethodPost,
		Path:     avatarPath,
		FormData: map[string]any{"avatar": avatar},
	}, &out)
	if err != nil {
		return "", err
	}

	if _, err := p.reload(ctx); err != nil {
		return out.AvatarURL, err
	}
	return out.AvatarURL, nil
}

func (p *profileService) reload(ctx context.Context) (*models.AccountDetail, error) {
	detail, err := fetchProfile(ctx, p.client)
	if err != nil {
		return nil, fmt.Errorf("reload profile: %w", err)
	}
	if err := p.session.SetUserAndToken(ctx, detail.ToUser(), nil); err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}
	return detail, nil
}
