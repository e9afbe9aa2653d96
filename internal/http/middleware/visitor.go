package middleware

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gin-gonic/gin"
)

const VisitorCookie = "frontdesk_visitor"

const visitorKey = "visitor_id"

// Visitor assigns every browser a stable opaque id used to key per-visitor
// view state (history caches, pending guards, flash notices). It carries no
// authority; the credential cookie is separate.
func Visitor(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		vid, err := c.Cookie(VisitorCookie)
		if err != nil || vid == "" {
			vid = fmt.Sprintf("v_%d_%d", time.Now().UnixNano(), rand.Intn(1000000))
			c.SetCookie(VisitorCookie, vid, 24*60*60, "/", "", secure, true)
		}
		c.Set(visitorKey, vid)
		c.Next()
	}
}

// VisitorID returns the id set by Visitor for the current request.
func VisitorID(c *gin.Context) string {
	vid, _ := c.Get(visitorKey)
	s, _ := vid.(string)
	return s
}
