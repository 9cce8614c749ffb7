package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/quzhan/internal/client/access"
)

var (
	ErrLoginRequired  = errors.New("please log in first")
	ErrForbidden      = errors.New("you are not allowed to do this")
	ErrSessionLoading = errors.New("session is still being verified, try again")
)

const (
	routeProfile    = "/profile"
	routeCreatePost = "/posts/create"
	routeAdmin      = "/admin"
)

// guard checks the current session against the permissions of route.
func (a *App) guard(route string) error {
	switch d := access.Check(a.session, route); d {
	case access.Allowed:
		return nil
	case access.Pending:
		return ErrSessionLoading
	case access.NeedLogin:
		return ErrLoginRequired
	case access.Forbidden:
		return ErrForbidden
	default:
		return fmt.Errorf("unexpected access decision %v", d)
	}
}
