package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/remontpro/frontdesk/internal/models"
)

type intakeForm struct {
	ClientName  string `form:"clientName" validate:"required,min=2,max=200"`
	ClientPhone string `form:"clientPhone" validate:"required,min=5,max=32"`
	ProblemText string `form:"problemText" validate:"required,min=5"`
	Address     string `form:"address" validate:"omitempty,max=500"`
}

var intakeFieldLabels = map[string]string{
	"ClientName":  "Имя клиента",
	"ClientPhone": "Телефон",
	"ProblemText": "Описание проблемы",
	"Address":     "Адрес",
}

func (h *Handler) IntakePage(c *gin.Context) {
	user, role := h.Sessions.Current(c)
	c.HTML(http.StatusOK, "create.html", gin.H{
		"Title": "Создать заявку",
		"User":  user,
		"Role":  string(role),
		"Form":  intakeForm{},
	})
}

func (h *Handler) IntakeSubmit(c *gin.Context) {
	var form intakeForm
	_ = c.ShouldBind(&form)
	form.ClientName = strings.TrimSpace(form.ClientName)
	form.ClientPhone = strings.TrimSpace(form.ClientPhone)
	form.ProblemText = strings.TrimSpace(form.ProblemText)
	form.Address = strings.TrimSpace(form.Address)

	render := func(errMsg string) {
		user, role := h.Sessions.Current(c)
		c.HTML(http.StatusOK, "create.html", gin.H{
			"Title": "Создать заявку",
			"User":  user,
			"Role":  string(role),
			"Form":  form,
			"Error": errMsg,
		})
	}

	if err := h.Validator.Struct(form); err != nil {
		render(intakeValidationMessage(err))
		return
	}

	in := models.RequestCreate{
		ClientName:  form.ClientName,
		ClientPhone: form.ClientPhone,
		ProblemText: form.ProblemText,
		Address:     optional(form.Address),
	}
	if _, err := h.Backend.CreateRequest(c.Request.Context(), in); err != nil {
		render(errorMessage(err))
		return
	}

	h.state(c).SetFlash("Заявка создана")
	c.Redirect(http.StatusSeeOther, "/")
}

func intakeValidationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return genericErrorMessage
	}
	var parts []string
	for _, fe := range errs {
		label, ok := intakeFieldLabels[fe.StructField()]
		if !ok {
			label = fe.StructField()
		}
		parts = append(parts, label)
	}
	return "Проверьте поля: " + strings.Join(parts, ", ")
}
