// Package access decides whether the current session may open a route.
package access

import (
	"net/url"
	"slices"
	"strings"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// Permissions maps a route to the roles allowed on it. A rule also covers
// every route below it.
var Permissions = map[string][]models.Role{
	"/admin":           {models.RoleAdmin},
	"/admin/dashboard": {models.RoleAdmin},
	"/profile":         {models.RoleAdmin, models.RoleUser},
	"/posts/create":    {models.RoleAdmin, models.RoleUser},
}

type Decision int

const (
	// Pending means the session has not been revalidated yet.
	Pending Decision = iota
	Allowed
	NeedLogin
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Allowed:
		return "allowed"
	case NeedLogin:
		return "need login"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Viewer is the session as seen by the access check.
type Viewer interface {
	Initialized() bool
	User() *models.User
	Token() string
}

// RolesFor returns the roles allowed on route and whether any rule applies.
// The most specific rule wins.
func RolesFor(route string) ([]models.Role, bool) {
	route = strings.TrimRight(route, "/")
	for r := route; r != ""; r = r[:max(strings.LastIndex(r, "/"), 0)] {
		if roles, found := Permissions[r]; found {
			return roles, true
		}
	}
	return nil, false
}

// Check decides whether v may open route. Routes without a rule are public.
func Check(v Viewer, route string) Decision {
	roles, guarded := RolesFor(route)
	if !guarded {
		return Allowed
	}
	if !v.Initialized() {
		return Pending
	}

	user := v.User()
	if user == nil || v.Token() == "" || user.Role == nil {
		return NeedLogin
	}
	if !slices.Contains(roles, *user.Role) {
		return Forbidden
	}
	return Allowed
}

// Redirect returns where a denied decision sends the user, or "" when there
// is nowhere to go.
func Redirect(d Decision, route string) string {
	switch d {
	case NeedLogin:
		return LoginPath + "?redirect=" + url.QueryEscape(route)
	case Forbidden:
		return UnauthorizedPath
	default:
		return ""
	}
}
