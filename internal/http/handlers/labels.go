package handlers

import (
	"time"

	"github.com/remontpro/frontdesk/internal/lifecycle"
	"github.com/remontpro/frontdesk/internal/models"
)

var actionLabels = map[lifecycle.Action]string{
	lifecycle.ActionCreate: "Создана",
	lifecycle.ActionAssign: "Назначена",
	lifecycle.ActionCancel: "Отменена",
	lifecycle.ActionTake:   "Взята в работу",
	lifecycle.ActionDone:   "Выполнена",
}

var statusLabels = map[lifecycle.Status]string{
	lifecycle.StatusNew:        "Новая",
	lifecycle.StatusAssigned:   "Назначена",
	lifecycle.StatusInProgress: "В работе",
	lifecycle.StatusDone:       "Выполнена",
	lifecycle.StatusCancelled:  "Отменена",
}

var fieldLabels = map[string]string{
	"clientName":  "Имя клиента",
	"clientPhone": "Телефон",
	"problemText": "Описание проблемы",
	"address":     "Адрес",
	"username":    "Логин",
	"password":    "Пароль",
	"masterId":    "Мастер",
}

func statusLabel(s lifecycle.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func actionLabel(a lifecycle.Action) string {
	if l, ok := actionLabels[a]; ok {
		return l
	}
	return string(a)
}

// statusOption feeds the dispatcher filter dropdown.
type statusOption struct {
	Value    lifecycle.Status
	Label    string
	Selected bool
}

func statusOptions(selected lifecycle.Status) []statusOption {
	out := []statusOption{{Value: "", Label: "все", Selected: selected == ""}}
	for _, s := range lifecycle.All() {
		out = append(out, statusOption{Value: s, Label: statusLabel(s), Selected: s == selected})
	}
	return out
}

// historyItem is one audit event shaped for the history panel.
type historyItem struct {
	Label      string
	Actor      string
	Transition string
	At         string
}

func historyItems(events []models.AuditEvent) []historyItem {
	out := make([]historyItem, 0, len(events))
	for _, e := range events {
		item := historyItem{
			Label: actionLabel(e.Action),
			At:    localize(e.CreatedAt),
		}
		if e.ActorUsername != nil && *e.ActorUsername != "" {
			item.Actor = *e.ActorUsername
		}
		if e.OldStatus != nil && e.NewStatus != nil {
			item.Transition = statusLabel(*e.OldStatus) + " → " + statusLabel(*e.NewStatus)
		}
		out = append(out, item)
	}
	return out
}

func localize(t time.Time) string {
	return t.Local().Format("02.01.2006 15:04")
}
