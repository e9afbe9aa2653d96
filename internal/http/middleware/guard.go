package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/remontpro/frontdesk/internal/lifecycle"
	"github.com/remontpro/frontdesk/internal/models"
	"github.com/remontpro/frontdesk/internal/session"
)

const (
	userKey = "current_user"
	roleKey = "current_role"
)

// loginTarget builds the login redirect. The preserved destination must be a
// GET-able path, so mutation routes fall back to the page they came from.
func loginTarget(c *gin.Context) string {
	target := c.Request.URL.RequestURI()
	if c.Request.Method != http.MethodGet {
		target = "/"
		if ref := c.Request.Referer(); ref != "" {
			if u, err := url.Parse(ref); err == nil && u.Path != "" {
				target = u.RequestURI()
			}
		}
	}
	return "/login?next=" + url.QueryEscape(target)
}

// RequireRole guards a route group. Anonymous callers are redirected to the
// login view with the originating location preserved for post-login return;
// a resolved but insufficient role gets a forbidden page.
func RequireRole(sessions *session.Manager, need lifecycle.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, role := sessions.Current(c)
		if role == lifecycle.RoleAnonymous {
			c.Redirect(http.StatusFound, loginTarget(c))
			c.Abort()
			return
		}
		if !lifecycle.Satisfies(role, need) {
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"Title":   "Доступ запрещён",
				"Message": "Недостаточно прав для просмотра этой страницы",
			})
			c.Abort()
			return
		}
		c.Set(userKey, user)
		c.Set(roleKey, role)
		c.Next()
	}
}

// RequireAuth admits any resolved role. Used for capabilities shared by
// dispatcher and master, like the audit history.
func RequireAuth(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, role := sessions.Current(c)
		if role == lifecycle.RoleAnonymous {
			c.Redirect(http.StatusFound, loginTarget(c))
			c.Abort()
			return
		}
		c.Set(userKey, user)
		c.Set(roleKey, role)
		c.Next()
	}
}

// Caller returns the identity resolved by RequireRole.
func Caller(c *gin.Context) (models.User, lifecycle.Role) {
	u, _ := c.Get(userKey)
	r, _ := c.Get(roleKey)
	user, _ := u.(models.User)
	role, _ := r.(lifecycle.Role)
	return user, role
}
