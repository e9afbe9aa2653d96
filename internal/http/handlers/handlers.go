package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/remontpro/frontdesk/internal/backend"
	"github.com/remontpro/frontdesk/internal/http/middleware"
	"github.com/remontpro/frontdesk/internal/lifecycle"
	"github.com/remontpro/frontdesk/internal/models"
	"github.com/remontpro/frontdesk/internal/session"
	"github.com/remontpro/frontdesk/internal/viewstate"
)

type Handler struct {
	Backend   *backend.Client
	Sessions  *session.Manager
	Views     *viewstate.Registry
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Backend.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE", "Backend unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// redirectLogin sends the browser to the login view, preserving the page it
// came from for post-login return.
func (h *Handler) redirectLogin(c *gin.Context) {
	target := c.Request.URL.RequestURI()
	if c.Request.Method != http.MethodGet {
		target = roleHome(lifecycle.RoleAnonymous)
		if ref := c.Request.Referer(); ref != "" {
			if u, err := url.Parse(ref); err == nil && u.Path != "" {
				target = u.RequestURI()
			}
		}
	}
	c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(target))
}

// safeNext accepts only same-site paths for post-login redirects.
func safeNext(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	return raw
}

func roleHome(role lifecycle.Role) string {
	switch role {
	case lifecycle.RoleDispatcher, lifecycle.RoleAdmin:
		return "/dispatcher"
	case lifecycle.RoleMaster:
		return "/master"
	}
	return "/"
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) state(c *gin.Context) *viewstate.State {
	return h.Views.Get(middleware.VisitorID(c))
}

// optional turns a trimmed form value into an omittable field: nil when
// blank, never an empty string.
func optional(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	return &v
}

func hasAction(actions []lifecycle.Action, a lifecycle.Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

// requestRow is a RepairRequest projected for rendering: the affordances
// come from the lifecycle action table, never from per-view status checks.
type requestRow struct {
	Request       models.RepairRequest
	StatusLabel   string
	Assignee      string
	CanAssign     bool
	CanCancel     bool
	CanTake       bool
	CanDone       bool
	Busy          bool
	HistoryOpen   bool
	HistoryLoaded bool
	History       []historyItem
}

func (h *Handler) buildRow(req models.RepairRequest, role lifecycle.Role, callerID int64, st *viewstate.State) requestRow {
	isAssignee := req.AssignedTo != nil && *req.AssignedTo == callerID
	actions := lifecycle.ActionsFor(req.Status, role, isAssignee)

	row := requestRow{
		Request:     req,
		StatusLabel: statusLabel(req.Status),
		Assignee:    req.AssigneeName(),
		CanAssign:   hasAction(actions, lifecycle.ActionAssign),
		CanCancel:   hasAction(actions, lifecycle.ActionCancel),
		CanTake:     hasAction(actions, lifecycle.ActionTake),
		CanDone:     hasAction(actions, lifecycle.ActionDone),
		Busy:        st.Pending() != 0,
		HistoryOpen: st.IsOpen(req.ID),
	}
	if row.HistoryOpen {
		if events, ok := st.History(req.ID); ok {
			row.HistoryLoaded = true
			row.History = historyItems(events)
		}
	}
	return row
}
