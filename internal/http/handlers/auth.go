package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/remontpro/frontdesk/internal/http/middleware"
)

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

func (h *Handler) LoginPage(c *gin.Context) {
	user, role := h.Sessions.Current(c)
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Title":    "Вход",
		"User":     user,
		"Role":     string(role),
		"Next":     safeNext(c.Query("next")),
		"Username": "",
	})
}

func (h *Handler) LoginSubmit(c *gin.Context) {
	var form loginForm
	_ = c.ShouldBind(&form)
	form.Username = strings.TrimSpace(form.Username)

	render := func(errMsg string) {
		user, role := h.Sessions.Current(c)
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Title":    "Вход",
			"User":     user,
			"Role":     string(role),
			"Next":     safeNext(form.Next),
			"Username": form.Username,
			"Error":    errMsg,
		})
	}

	if err := h.Validator.Struct(form); err != nil {
		render("Введите логин и пароль")
		return
	}

	token, err := h.Sessions.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		h.Logger.Info().Str("username", form.Username).Msg("login rejected")
		render(errorMessage(err))
		return
	}

	h.Sessions.Issue(c, token)
	_, role := h.Sessions.Resolve(c.Request.Context(), token)

	target := safeNext(form.Next)
	if target == "" {
		target = roleHome(role)
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (h *Handler) Logout(c *gin.Context) {
	h.Sessions.Clear(c)
	h.Views.Drop(middleware.VisitorID(c))
	c.Redirect(http.StatusSeeOther, "/")
}
