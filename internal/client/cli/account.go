package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/quzhan/internal/client/session"
	"github.com/dmitrijs2005/quzhan/internal/client/services"
)

// Register prompts for an account name and a password typed twice, creates
// the account and logs it in.
func (a *App) Register(ctx context.Context) error {
	account, err := GetSimpleText(a.reader, "Enter account name", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	confirm, err := GetPassword("Repeat password", os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.authService.Register(ctx, account, password, confirm)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Welcome, %s!", displayName(user)))
	return nil
}

func (a *App) Login(ctx context.Context) error {
	account, err := GetSimpleText(a.reader, "Enter account name", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.authService.AccountLogin(ctx, account, password)
	if err != nil {
		return err
	}
	a.resetListings()
	printlnFn(fmt.Sprintf("Logged in as %s", displayName(user)))
	return nil
}

// PhoneLogin sends a verification code to the phone and logs in with it.
func (a *App) PhoneLogin(ctx context.Context) error {
	phone, err := GetSimpleText(a.reader, "Enter phone number", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.authService.SendCaptcha(ctx, phone); err != nil {
		return err
	}
	code, err := GetSimpleText(a.reader, "Enter the code you received", os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.authService.PhoneLogin(ctx, phone, code)
	if err != nil {
		return err
	}
	a.resetListings()
	printlnFn(fmt.Sprintf("Logged in as %s", displayName(user)))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	err := a.authService.Logout(ctx)
	if errors.Is(err, services.ErrNotLoggedIn) {
		return err
	}
	a.resetListings()
	printlnFn("Logged out.")
	return err
}

// WhoAmI prints the session user and what the access token claims.
func (a *App) WhoAmI(context.Context) error {
	u := a.session.User()
	if u == nil {
		return ErrLoginRequired
	}

	printlnFn(fmt.Sprintf("%s (id %s, role %s)", displayName(u), u.UserID, u.EffectiveRole()))

	info, err := session.InspectToken(a.session.Token())
	if err != nil {
		printlnFn("Access token: unreadable")
		return nil
	}
	switch {
	case info.ExpiresAt.IsZero():
		printlnFn("Access token: no expiry")
	case info.Expired(time.Now()):
		printlnFn(fmt.Sprintf("Access token: expired at %s (refreshed on next request)", info.ExpiresAt.Format(time.RFC3339)))
	default:
		printlnFn(fmt.Sprintf("Access token: valid until %s", info.ExpiresAt.Format(time.RFC3339)))
	}
	return nil
}

func (a *App) resetListings() {
	a.timeline.Reset()
	a.mine.Reset()
	a.hotNext = nil
}
