package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/remontpro/frontdesk/internal/backend"
	"github.com/remontpro/frontdesk/internal/lifecycle"
)

func identityServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		atomic.AddInt32(calls, 1)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code": "invalid_token", "message": "Неверный логин или пароль"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": 2, "username": "disp", "role": "dispatcher"}`))
	}))
}

func TestResolveCachesIdentity(t *testing.T) {
	var calls int32
	srv := identityServer(t, &calls)
	defer srv.Close()

	m := NewManager(backend.New(srv.URL, 0), false)
	for i := 0; i < 3; i++ {
		user, role := m.Resolve(context.Background(), "good")
		if role != lifecycle.RoleDispatcher || user.Username != "disp" {
			t.Fatalf("unexpected identity: %+v %s", user, role)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single identity fetch, got %d", got)
	}
}

func TestResolveSharesInflightFetch(t *testing.T) {
	var calls int32
	srv := identityServer(t, &calls)
	defer srv.Close()

	m := NewManager(backend.New(srv.URL, 0), false)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, role := m.Resolve(context.Background(), "good")
			if role != lifecycle.RoleDispatcher {
				t.Errorf("expected dispatcher, got %s", role)
			}
		}()
	}
	wg.Wait()
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single shared fetch, got %d", got)
	}
}

func TestResolveDegradesToAnonymous(t *testing.T) {
	var calls int32
	srv := identityServer(t, &calls)
	defer srv.Close()

	m := NewManager(backend.New(srv.URL, 0), false)
	user, role := m.Resolve(context.Background(), "expired")
	if role != lifecycle.RoleAnonymous || user.ID != 0 {
		t.Fatalf("expired credential must resolve to anonymous, got %+v %s", user, role)
	}

	// No credential resolves without touching the backend.
	before := atomic.LoadInt32(&calls)
	if _, role := m.Resolve(context.Background(), ""); role != lifecycle.RoleAnonymous {
		t.Fatalf("empty token must be anonymous")
	}
	if atomic.LoadInt32(&calls) != before {
		t.Fatalf("empty token must not hit the identity endpoint")
	}
}

func TestLoginRejectionPersistsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code": "invalid_credentials", "message": "Неверный логин или пароль"}`))
	}))
	defer srv.Close()

	m := NewManager(backend.New(srv.URL, 0), false)
	token, err := m.Login(context.Background(), "disp", "wrong")
	if err == nil || token != "" {
		t.Fatalf("expected rejection, got token=%q err=%v", token, err)
	}
	ae := backend.AsAPIError(err)
	if ae == nil || ae.Message != "Неверный логин или пароль" {
		t.Fatalf("expected backend message surfaced, got %v", err)
	}
}

func TestIssueAndClearCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewManager(backend.New("http://127.0.0.1:1", 0), false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	m.Issue(c, "tok-1")

	resp := w.Result()
	cookies := resp.Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != "tok-1" {
		t.Fatalf("expected credential cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("credential cookie must be http-only")
	}

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.AddCookie(&http.Cookie{Name: CookieName, Value: "tok-1"})
	if m.Token(c2) != "tok-1" {
		t.Fatalf("expected token read back")
	}
	m.Clear(c2)
	cleared := w2.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge != -1 {
		t.Fatalf("expected cookie deletion, got %v", cleared)
	}
}

func TestClearForgetsCachedRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var calls int32
	srv := identityServer(t, &calls)
	defer srv.Close()

	m := NewManager(backend.New(srv.URL, 0), false)
	m.Resolve(context.Background(), "good")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: CookieName, Value: "good"})
	m.Clear(c)

	m.Resolve(context.Background(), "good")
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected refetch after logout, got %d calls", got)
	}
}
