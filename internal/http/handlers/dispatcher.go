package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/remontpro/frontdesk/internal/backend"
	"github.com/remontpro/frontdesk/internal/http/middleware"
	"github.com/remontpro/frontdesk/internal/lifecycle"
)

func (h *Handler) DispatcherPage(c *gin.Context) {
	user, role := middleware.Caller(c)
	token := h.Sessions.Token(c)
	st := h.state(c)
	ctx := c.Request.Context()

	var filter lifecycle.Status
	if raw := c.Query("status"); raw != "" {
		if s, ok := lifecycle.Parse(raw); ok {
			filter = s
		}
	}

	data := gin.H{
		"Title":    "Диспетчер",
		"User":     user,
		"Role":     string(role),
		"Filter":   filter,
		"Statuses": statusOptions(filter),
		"Error":    st.TakeError(),
	}

	requests, err := h.Backend.ListRequests(ctx, token, filter)
	if err != nil {
		if backend.IsAuth(err) {
			h.redirectLogin(c)
			return
		}
		data["Error"] = errorMessage(err)
		c.HTML(http.StatusOK, "dispatcher.html", data)
		return
	}

	// The roster is fetched once per session. A failed fetch degrades to an
	// empty picker for this render only; nothing is cached, so the next
	// render retries.
	masters, cached := st.Masters()
	if !cached {
		masters, err = h.Backend.ListMasters(ctx, token)
		if err != nil {
			masters = nil
		} else {
			st.PutMasters(masters)
		}
	}

	rows := make([]requestRow, 0, len(requests))
	for _, req := range requests {
		rows = append(rows, h.buildRow(req, role, user.ID, st))
	}
	data["Rows"] = rows
	data["Masters"] = masters
	c.HTML(http.StatusOK, "dispatcher.html", data)
}

func (h *Handler) DispatcherAssign(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/dispatcher")
		return
	}
	st := h.state(c)
	back := dispatcherBack(c)

	masterID, err := strconv.ParseInt(c.PostForm("masterId"), 10, 64)
	if err != nil || masterID <= 0 {
		st.SetError("Выберите мастера")
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	if !st.Begin(id) {
		st.SetError("Дождитесь завершения предыдущего действия")
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	defer st.End(id)

	if _, err := h.Backend.Assign(c.Request.Context(), h.Sessions.Token(c), id, masterID); err != nil {
		if backend.IsAuth(err) {
			h.redirectLogin(c)
			return
		}
		st.SetError(errorMessage(err))
	} else {
		st.DropHistory(id)
	}
	c.Redirect(http.StatusSeeOther, back)
}

func (h *Handler) DispatcherCancel(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/dispatcher")
		return
	}
	st := h.state(c)
	back := dispatcherBack(c)

	if !st.Begin(id) {
		st.SetError("Дождитесь завершения предыдущего действия")
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	defer st.End(id)

	if _, err := h.Backend.Cancel(c.Request.Context(), h.Sessions.Token(c), id); err != nil {
		if backend.IsAuth(err) {
			h.redirectLogin(c)
			return
		}
		st.SetError(errorMessage(err))
	} else {
		st.DropHistory(id)
	}
	c.Redirect(http.StatusSeeOther, back)
}

// dispatcherBack preserves the active status filter across the
// post-redirect-get cycle.
func dispatcherBack(c *gin.Context) string {
	if raw := c.PostForm("status"); raw != "" {
		if s, ok := lifecycle.Parse(raw); ok {
			return "/dispatcher?status=" + url.QueryEscape(string(s))
		}
	}
	return "/dispatcher"
}
