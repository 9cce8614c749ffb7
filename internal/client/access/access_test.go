package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/quzhan/internal/client/models"
	"github.com/dmitrijs2005/quzhan/internal/common"
)

type viewer struct {
	initialized bool
	user        *models.User
	token       string
}

func (v viewer) Initialized() bool  { return v.initialized }
func (v viewer) User() *models.User { return v.user }
func (v viewer) Token() string      { return v.token }

func withRole(r models.Role) viewer {
	return viewer{initialized: true, user: &models.User{UserID: "u", Role: common.Ptr(r)}, token: "t"}
}

func TestRolesFor(t *testing.T) {
	roles, ok := RolesFor("/admin/posts/7")
	assert.True(t, ok)
	assert.Equal(t, []models.Role{models.RoleAdmin}, roles)

	roles, ok = RolesFor("/posts/create/")
	assert.True(t, ok)
	assert.Len(t, roles, 2)

	_, ok = RolesFor("/posts/7")
	assert.False(t, ok)
	_, ok = RolesFor("/")
	assert.False(t, ok)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		viewer viewer
		route  string
		want   Decision
	}{
		{"public route needs nothing", viewer{}, "/posts", Allowed},
		{"not yet revalidated", viewer{user: &models.User{}, token: "t"}, "/profile", Pending},
		{"anonymous", viewer{initialized: true}, "/profile", NeedLogin},
		{"token without user", viewer{initialized: true, token: "t"}, "/profile", NeedLogin},
		{"user without role", viewer{initialized: true, user: &models.User{UserID: "u"}, token: "t"}, "/profile", NeedLogin},
		{"user on profile", withRole(models.RoleUser), "/profile", Allowed},
		{"user on admin", withRole(models.RoleUser), "/admin", Forbidden},
		{"guest on create", withRole(models.RoleGuest), "/posts/create", Forbidden},
		{"admin below admin", withRole(models.RoleAdmin), "/admin/posts", Allowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.viewer, tt.route))
		})
	}
}

func TestRedirect(t *testing.T) {
	assert.Equal(t, "/login?redirect=%2Fprofile", Redirect(NeedLogin, "/profile"))
	assert.Equal(t, UnauthorizedPath, Redirect(Forbidden, "/admin"))
	assert.Empty(t, Redirect(Allowed, "/admin"))
	assert.Empty(t, Redirect(Pending, "/admin"))
}
