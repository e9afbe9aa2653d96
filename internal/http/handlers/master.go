package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/remontpro/frontdesk/internal/backend"
	"github.com/remontpro/frontdesk/internal/http/middleware"
	"github.com/remontpro/frontdesk/internal/lifecycle"
)

func (h *Handler) MasterPage(c *gin.Context) {
	user, role := middleware.Caller(c)
	st := h.state(c)

	data := gin.H{
		"Title": "Мастер",
		"User":  user,
		"Role":  string(role),
		"Error": st.TakeError(),
	}

	requests, err := h.Backend.MasterRequests(c.Request.Context(), h.Sessions.Token(c))
	if err != nil {
		if backend.IsAuth(err) {
			h.redirectLogin(c)
			return
		}
		data["Error"] = errorMessage(err)
		c.HTML(http.StatusOK, "master.html", data)
		return
	}

	rows := make([]requestRow, 0, len(requests))
	for _, req := range requests {
		rows = append(rows, h.buildRow(req, role, user.ID, st))
	}
	data["Rows"] = rows
	c.HTML(http.StatusOK, "master.html", data)
}

func (h *Handler) MasterTake(c *gin.Context) {
	h.masterAction(c, lifecycle.ActionTake)
}

func (h *Handler) MasterDone(c *gin.Context) {
	h.masterAction(c, lifecycle.ActionDone)
}

func (h *Handler) masterAction(c *gin.Context, action lifecycle.Action) {
	id, ok := paramID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/master")
		return
	}
	st := h.state(c)

	if !st.Begin(id) {
		st.SetError("Дождитесь завершения предыдущего действия")
		c.Redirect(http.StatusSeeOther, "/master")
		return
	}
	defer st.End(id)

	var err error
	token := h.Sessions.Token(c)
	switch action {
	case lifecycle.ActionTake:
		_, err = h.Backend.Take(c.Request.Context(), token, id)
	case lifecycle.ActionDone:
		_, err = h.Backend.Done(c.Request.Context(), token, id)
	}
	if err != nil {
		if backend.IsAuth(err) {
			h.redirectLogin(c)
			return
		}
		st.SetError(errorMessage(err))
	} else {
		st.DropHistory(id)
	}
	c.Redirect(http.StatusSeeOther, "/master")
}
