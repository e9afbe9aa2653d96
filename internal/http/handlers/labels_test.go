package handlers

import (
	"testing"
	"time"

	"github.com/remontpro/frontdesk/internal/lifecycle"
	"github.com/remontpro/frontdesk/internal/models"
)

func TestHistoryItems(t *testing.T) {
	actor := "dispatcher1"
	oldS := lifecycle.StatusNew
	newS := lifecycle.StatusAssigned
	events := []models.AuditEvent{
		{ID: 1, Action: lifecycle.ActionCreate, CreatedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)},
		{ID: 2, Action: lifecycle.ActionAssign, ActorUsername: &actor, OldStatus: &oldS, NewStatus: &newS, CreatedAt: time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)},
	}

	items := historyItems(events)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Label != "Создана" || items[0].Actor != "" || items[0].Transition != "" {
		t.Fatalf("unexpected create item: %+v", items[0])
	}
	if items[1].Label != "Назначена" || items[1].Actor != "dispatcher1" {
		t.Fatalf("unexpected assign item: %+v", items[1])
	}
	if items[1].Transition != "Новая → Назначена" {
		t.Fatalf("unexpected transition: %q", items[1].Transition)
	}
}

func TestHistoryItemsUnknownActionKeepsRawTag(t *testing.T) {
	items := historyItems([]models.AuditEvent{{ID: 1, Action: "reopen"}})
	if items[0].Label != "reopen" {
		t.Fatalf("unknown action must fall back to the raw tag, got %q", items[0].Label)
	}
}

func TestStatusOptions(t *testing.T) {
	opts := statusOptions(lifecycle.StatusInProgress)
	if len(opts) != 6 {
		t.Fatalf("expected all-statuses plus the empty filter, got %d", len(opts))
	}
	if opts[0].Value != "" || opts[0].Label != "все" || opts[0].Selected {
		t.Fatalf("unexpected first option: %+v", opts[0])
	}
	var selected int
	for _, o := range opts {
		if o.Selected {
			selected++
			if o.Value != lifecycle.StatusInProgress {
				t.Fatalf("wrong option selected: %+v", o)
			}
		}
	}
	if selected != 1 {
		t.Fatalf("exactly one option must be selected, got %d", selected)
	}
}
