package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/whisperwall/internal/model"
)

const testSecret = "test-session-secret-32-bytes-ok!"

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	m, err := NewSessionManager(testSecret)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return m
}

// establishAndCapture logs the account in against a recorder and returns a
// new request carrying the resulting session cookie — simulating the
// browser's next request.
func establishAndCapture(t *testing.T, m *SessionManager, account *model.Account) *http.Request {
	t.Helper()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)

	if err := m.Establish(rr, req, account); err != nil {
		t.Fatalf("Establish() error = %v", err)
	}

	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Establish() set no cookie")
	}

	next := httptest.NewRequest(http.MethodGet, "/secrets", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	return next
}

// =========================================================================
// SESSION LIFECYCLE TESTS
// =========================================================================

func TestNewSessionManager_EmptySecret(t *testing.T) {
	if _, err := NewSessionManager(""); err == nil {
		t.Fatal("NewSessionManager() should reject an empty secret")
	}
}

func TestEstablishThenRead(t *testing.T) {
	m := newTestSessionManager(t)
	account := &model.Account{ID: "acc-123", Username: "alice@example.com"}

	next := establishAndCapture(t, m, account)

	id, ok := m.AccountID(next)
	if !ok {
		t.Fatal("AccountID() = anonymous after Establish")
	}
	if id != "acc-123" {
		t.Errorf("AccountID() = %q, want %q", id, "acc-123")
	}
}

func TestAccountID_AnonymousRequest(t *testing.T) {
	m := newTestSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/secrets", nil)
	if _, ok := m.AccountID(req); ok {
		t.Error("AccountID() = authenticated for a request with no cookie")
	}
}

func TestAccountID_TamperedCookie(t *testing.T) {
	m := newTestSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/secrets", nil)
	req.AddCookie(&http.Cookie{Name: "ww_session", Value: "forged-garbage"})

	if _, ok := m.AccountID(req); ok {
		t.Error("AccountID() accepted a forged cookie")
	}
}

func TestClear_DestroysSession(t *testing.T) {
	m := newTestSessionManager(t)
	account := &model.Account{ID: "acc-456", Username: "bob@example.com"}

	authed := establishAndCapture(t, m, account)

	rr := httptest.NewRecorder()
	if err := m.Clear(rr, authed); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	// The clearing response must instruct the browser to drop the cookie.
	cleared := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == "ww_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Clear() did not expire the session cookie")
	}
}

func TestClear_IsIdempotent(t *testing.T) {
	m := newTestSessionManager(t)

	// No session at all — both calls must succeed.
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)

	if err := m.Clear(httptest.NewRecorder(), req); err != nil {
		t.Fatalf("Clear() with no session error = %v", err)
	}
	if err := m.Clear(httptest.NewRecorder(), req); err != nil {
		t.Fatalf("second Clear() error = %v", err)
	}
}

// =========================================================================
// MIDDLEWARE TESTS
// =========================================================================

func TestRequireAuth_RedirectsAnonymousToLogin(t *testing.T) {
	m := newTestSessionManager(t)

	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("protected handler ran for an anonymous request")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/secrets", nil))

	if rr.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusFound)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestRequireAuth_PassesAccountIDToHandler(t *testing.T) {
	m := newTestSessionManager(t)
	account := &model.Account{ID: "acc-789", Username: "carol@example.com"}

	authed := establishAndCapture(t, m, account)

	var gotID string
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = AccountIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authed)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if gotID != "acc-789" {
		t.Errorf("account ID in context = %q, want %q", gotID, "acc-789")
	}
}

func TestAccountIDFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := AccountIDFromContext(req.Context()); ok {
		t.Error("AccountIDFromContext() = ok on a bare context")
	}
}
