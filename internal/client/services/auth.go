// Package services contains the typed endpoint wrappers of the quzhan
// client. Every call goes through client.Client, so expired access tokens
// are refreshed transparently and unusable credentials end the session.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/quzhan/internal/client/client"
	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/client/session"
	"github.com/dmitrijs2005/quzhan/internal/common"
	"github.com/dmitrijs2005/quzhan/internal/logging"
)

const (
	accountLoginPath = "/api/v1/user-hub/account/login"
	phoneLoginPath   = "/api/v1/user-hub/phone/login"
	registerPath     = "/api/v1/user-hub/account/register"
	sendCaptchaPath  = "/api/v1/user-hub/auth/send-captcha"
	logoutPath       = "/api/v1/user-hub/auth/logout"
)

// AuthService defines the login, registration and logout operations.
//
// Every successful login stores the access token and the user's profile in
// the session. LoadUserInfo revalidates a restored session against the
// backend.
type AuthService interface {
	AccountLogin(ctx context.Context, account, password string) (*models.User, error)
	PhoneLogin(ctx context.Context, phone, code string) (*models.User, error)
	SendCaptcha(ctx context.Context, phone string) error
	Register(ctx context.Context, account, password, confirm string) (*models.User, error)
	Logout(ctx context.Context) error
	LoadUserInfo(ctx context.Context) error
}

type authService struct {
	client  *client.Client
	session *session.Session
	logger  logging.Logger
}

func NewAuthService(c *client.Client, sess *session.Session, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{client: c, session: sess, logger: logger}
}

func (a *authService) AccountLogin(ctx context.Context, account, password string) (*models.User, error) {
	if strings.TrimSpace(account) == "" || password == "" {
		return nil, ErrEmptyCredentials
	}
	return a.login(ctx, accountLoginPath, models.AccountLoginRequest{Account: account, Password: password})
}

func (a *authService) PhoneLogin(ctx context.Context, phone, code string) (*models.User, error) {
	if strings.TrimSpace(phone) == "" || code == "" {
		return nil, ErrEmptyCredentials
	}
	return a.login(ctx, phoneLoginPath, models.PhoneLoginRequest{Phone: phone, Code: code})
}

func (a *authService) SendCaptcha(ctx context.Context, phone string) error {
	return a.client.Do(ctx, a.client.Services.UserHub, &client.Request{
		Method: http.MethodPost,
		Path:   sendCaptchaPath,
		Body:   models.CaptchaRequest{Phone: phone},
	}, nil)
}

// Register creates the account. The gateway answers a registration like a
// login, so the new user ends up logged in.
func (a *authService) Register(ctx context.Context, account, password, confirm string) (*models.User, error) {
	if strings.TrimSpace(account) == "" || password == "" {
		return nil, ErrEmptyCredentials
	}
	if password != confirm {
		return nil, common.ErrorPasswordMismatch
	}
	return a.login(ctx, registerPath, models.RegisterRequest{
		Account:         account,
		Password:        password,
		ConfirmPassword: confirm,
	})
}

// login posts body to path and completes the login flow: store the token,
// fetch the profile and keep the user only if it has an id.
func (a *authService) login(ctx context.Context, path string, body any) (*models.User, error) {
	var data models.LoginData
	err := a.client.Do(ctx, a.client.Services.UserHub, &client.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	}, &data)
	if err != nil {
		return nil, err
	}

	token := data.Token.AccessToken
	if token == "" || data.UserManage.UserID == "" {
		return nil, ErrIncompleteLogin
	}

	if err := a.session.SetUserAndToken(ctx, nil, &token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	detail, err := fetchProfile(ctx, a.client)
	if err == nil && detail.UserID == "" {
		err = session.ErrMissingUserID
	}
	if err != nil {
		if cerr := a.session.ClearUserSession(ctx); cerr != nil {
			a.logger.Warn(ctx, "clearing session after failed login", "error", cerr)
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	user := detail.ToUser()
	if err := a.session.SetUserAndToken(ctx, user, nil); err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}
	a.logger.Info(ctx, "logged in", "user_id", user.UserID)
	return user, nil
}

// Logout tells the gateway to drop the refresh token. The local session is
// cleared whatever the gateway answers.
func (a *authService) Logout(ctx context.Context) error {
	token := a.session.Token()
	if token == "" {
		return ErrNotLoggedIn
	}

	_, err := a.client.Dispatcher().Send(ctx, a.client.Services.UserHub, &client.Request{
		Method:  http.MethodPost,
		Path:    logoutPath,
		Headers: map[string]string{common.AuthorizationHeaderName: "Bearer " + token},
	})
	if err != nil {
		a.logger.Warn(ctx, "server logout failed, clearing local session anyway", "error", err)
	}

	if cerr := a.session.ClearUserSession(ctx); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

func (a *authService) LoadUserInfo(ctx context.Context) error {
	return a.session.LoadUserInfo(ctx, func(ctx context.Context) (*models.AccountDetail, error) {
		return fetchProfile(ctx, a.client)
	})
}
