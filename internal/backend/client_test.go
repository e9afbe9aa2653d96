package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/remontpro/frontdesk/internal/lifecycle"
	"github.com/remontpro/frontdesk/internal/models"
)

func TestLoginSendsFormEncoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/token" {
			t.Fatalf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Fatalf("expected form content type, got %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("username") != "disp" || r.PostForm.Get("password") != "secret" {
			t.Fatalf("unexpected form values: %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(models.Token{AccessToken: "tok-1", TokenType: "bearer"})
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	token, err := c.Login(context.Background(), "disp", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token.AccessToken != "tok-1" {
		t.Fatalf("expected tok-1, got %s", token.AccessToken)
	}
}

func TestListRequestsAttachesBearerAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("expected bearer header, got %q", got)
		}
		if got := r.URL.Query().Get("status"); got != "in_progress" {
			t.Fatalf("expected status filter, got %q", got)
		}
		_, _ = w.Write([]byte(`[{"id": 3, "clientName": "Ivan", "status": "in_progress"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	items, err := c.ListRequests(context.Background(), "tok-1", lifecycle.StatusInProgress)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != 3 || items[0].Status != lifecycle.StatusInProgress {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestCreateRequestOmitsBlankAddress(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if r.Header.Get("Authorization") != "" {
			t.Fatalf("intake must stay anonymous")
		}
		_, _ = w.Write([]byte(`{"id": 1, "status": "new"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	created, err := c.CreateRequest(context.Background(), models.RequestCreate{
		ClientName:  "Ivan",
		ClientPhone: "+79001234567",
		ProblemText: "Leaking pipe",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != lifecycle.StatusNew {
		t.Fatalf("expected new, got %s", created.Status)
	}
	if _, present := body["address"]; present {
		t.Fatalf("blank address must be omitted, body had %v", body["address"])
	}
}

func TestAssignSendsMasterID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/requests/5/assign" {
			t.Fatalf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			MasterID int64 `json:"masterId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.MasterID != 7 {
			t.Fatalf("expected masterId 7, got %+v (err=%v)", body, err)
		}
		_, _ = w.Write([]byte(`{"id": 5, "status": "assigned", "assignedTo": 7}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	updated, err := c.Assign(context.Background(), "tok", 5, 7)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if updated.Status != lifecycle.StatusAssigned || updated.AssignedToID() != 7 {
		t.Fatalf("unexpected row: %+v", updated)
	}
}

func TestHistoryPathByRole(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	if _, err := c.History(context.Background(), "tok", lifecycle.RoleDispatcher, 9); err != nil {
		t.Fatalf("dispatcher history: %v", err)
	}
	if _, err := c.History(context.Background(), "tok", lifecycle.RoleMaster, 9); err != nil {
		t.Fatalf("master history: %v", err)
	}
	if paths[0] != "/requests/9/history" || paths[1] != "/master/requests/9/history" {
		t.Fatalf("unexpected paths: %v", paths)
	}
}

func TestRejectedRequestBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": "invalid_transition", "message": "Недопустимый переход статуса"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	_, err := c.Cancel(context.Background(), "tok", 4)
	ae := AsAPIError(err)
	if ae == nil {
		t.Fatalf("expected APIError, got %v", err)
	}
	if ae.Code != "invalid_transition" || ae.Status != http.StatusBadRequest {
		t.Fatalf("unexpected error: %+v", ae)
	}
	if IsAuth(err) {
		t.Fatalf("400 is not an auth failure")
	}
}

func TestValidationDetailsParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{
			"code": "validation_error",
			"message": "Ошибка валидации",
			"details": [{"loc": ["body", "clientPhone"], "msg": "field required"}]
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	_, err := c.CreateRequest(context.Background(), models.RequestCreate{})
	ae := AsAPIError(err)
	if ae == nil || len(ae.Details) != 1 {
		t.Fatalf("expected one validation detail, got %+v", ae)
	}
	if ae.Details[0].Field() != "clientPhone" {
		t.Fatalf("expected clientPhone field, got %q", ae.Details[0].Field())
	}
}

func TestNonJSONErrorBodyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	_, err := c.Me(context.Background(), "tok")
	ae := AsAPIError(err)
	if ae == nil || ae.Code != "http_502" {
		t.Fatalf("expected http_502 fallback, got %v", err)
	}
}

func TestAuthFailureDetected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code": "invalid_token", "message": "Неверный логин или пароль"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	_, err := c.MasterRequests(context.Background(), "expired")
	if !IsAuth(err) {
		t.Fatalf("expected auth failure, got %v", err)
	}
}

func TestTransportFailureIsNotAPIError(t *testing.T) {
	c := New("http://127.0.0.1:1", 0)
	_, err := c.ListMasters(context.Background(), "tok")
	if err == nil {
		t.Fatalf("expected error")
	}
	if AsAPIError(err) != nil || IsAuth(err) {
		t.Fatalf("transport failure must not normalize to APIError: %v", err)
	}
	if !strings.Contains(err.Error(), "connect") && !strings.Contains(err.Error(), "refused") {
		t.Logf("transport error: %v", err)
	}
}
