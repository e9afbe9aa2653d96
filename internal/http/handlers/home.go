package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Home(c *gin.Context) {
	user, role := h.Sessions.Current(c)
	st := h.state(c)
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Title": "RepairRequests",
		"User":  user,
		"Role":  string(role),
		"Home":  roleHome(role),
		"Flash": st.TakeFlash(),
	})
}
