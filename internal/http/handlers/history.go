package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/remontpro/frontdesk/internal/backend"
	"github.com/remontpro/frontdesk/internal/http/middleware"
	"github.com/remontpro/frontdesk/internal/lifecycle"
	"github.com/remontpro/frontdesk/internal/models"
)

// historyRole picks which of the two role-scoped audit paths to consume; the
// data behind them is the same logical resource.
func historyRole(role lifecycle.Role) lifecycle.Role {
	if role == lifecycle.RoleMaster {
		return lifecycle.RoleMaster
	}
	return lifecycle.RoleDispatcher
}

// HistoryToggle expands or collapses a row's history panel. The audit list
// is fetched once per request id per render session; re-expansion and the
// full-page rerender both serve the cached copy.
func (h *Handler) HistoryToggle(c *gin.Context) {
	_, role := middleware.Caller(c)
	st := h.state(c)
	back := historyBack(c, role)

	id, ok := paramID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	open := st.Toggle(id)
	if open {
		if _, cached := st.History(id); !cached {
			events, err := h.Backend.History(c.Request.Context(), h.Sessions.Token(c), historyRole(role), id)
			if err != nil {
				if backend.IsAuth(err) {
					h.redirectLogin(c)
					return
				}
				events = []models.AuditEvent{}
			}
			st.PutHistory(id, events)
		}
	}
	c.Redirect(http.StatusSeeOther, back)
}

// HistoryJSON godoc
// @Summary Audit history for a request
// @Description Ordered audit trail for one request, served from the per-visitor cache when already fetched
// @Tags history
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {array} models.AuditEvent
// @Failure 400 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/requests/{id}/history [get]
func (h *Handler) HistoryJSON(c *gin.Context) {
	_, role := middleware.Caller(c)
	st := h.state(c)

	id, ok := paramID(c)
	if !ok {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request id", nil)
		return
	}

	if events, cached := st.History(id); cached {
		c.JSON(http.StatusOK, events)
		return
	}

	events, err := h.Backend.History(c.Request.Context(), h.Sessions.Token(c), historyRole(role), id)
	if err != nil {
		if ae := backend.AsAPIError(err); ae != nil {
			writeError(c, ae.Status, ae.Code, ae.Message, nil)
			return
		}
		writeError(c, http.StatusBadGateway, "BACKEND_UNAVAILABLE", "Backend unavailable", nil)
		return
	}
	st.PutHistory(id, events)
	c.JSON(http.StatusOK, events)
}

func historyBack(c *gin.Context, role lifecycle.Role) string {
	if ref := c.Request.Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.Path != "" {
			return u.RequestURI()
		}
	}
	return roleHome(role)
}
