package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	userstore "github.com/campushub/campushub/internal/app/store/users"
	sysauth "github.com/campushub/campushub/internal/app/system/auth"
	"github.com/campushub/campushub/internal/app/system/ratelimit"
	"github.com/campushub/campushub/internal/domain/models"
	"github.com/campushub/campushub/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tokens, err := sysauth.NewTokenManager("test-secret-test-secret-test-sec", time.Hour, false,
		userstore.NewFetcher(db), zap.NewNop())
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return NewHandler(db, tokens, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestLoginSuccess(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	campus := fx.CreateCampus(ctx, "Main")
	fx.CreateUser(ctx, "jsmith", models.RoleStudent, campus.ID)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
		map[string]string{"username": "jsmith", "password": testutil.TestPassword})
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.AccessToken == "" {
		t.Error("no access token in body")
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sysauth.TokenCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("access-token cookie not set")
	}
	if !cookie.HttpOnly {
		t.Error("cookie is not HttpOnly")
	}
	if cookie.Value != body.AccessToken {
		t.Error("cookie and body token differ")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	campus := fx.CreateCampus(ctx, "Main")
	fx.CreateUser(ctx, "jsmith", models.RoleStudent, campus.ID)

	attempts := []map[string]string{
		{"username": "ghost", "password": testutil.TestPassword}, // unknown user
		{"username": "jsmith", "password": "wrong"},              // bad password
	}
	var bodies []string
	for _, attempt := range attempts {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", attempt)
		rec := httptest.NewRecorder()
		h.HandleLogin(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%v: status = %d, want 401", attempt["username"], rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Errorf("unknown-user and bad-password responses differ:\n%s\n%s", bodies[0], bodies[1])
	}
}

func TestLoginThrottlesRepeatedFailures(t *testing.T) {
	h, fx := newTestHandler(t)
	h.Limits = ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	campus := fx.CreateCampus(ctx, "Main")
	fx.CreateUser(ctx, "jsmith", models.RoleStudent, campus.ID)

	attempt := func(password string) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
			map[string]string{"username": "jsmith", "password": password})
		rec := httptest.NewRecorder()
		h.HandleLogin(rec, req)
		return rec
	}

	attempt("wrong")
	attempt("wrong")
	if rec := attempt("wrong"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third failure: status = %d, want 429", rec.Code)
	}
	// Even correct credentials stay locked out for the window.
	if rec := attempt(testutil.TestPassword); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("throttled correct password: status = %d, want 429", rec.Code)
	}
}

func TestLoginSuccessResetsUsernameWindow(t *testing.T) {
	h, fx := newTestHandler(t)
	h.Limits = ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 3, time.Minute)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	campus := fx.CreateCampus(ctx, "Main")
	fx.CreateUser(ctx, "jsmith", models.RoleStudent, campus.ID)

	attempt := func(password string) int {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
			map[string]string{"username": "jsmith", "password": password})
		rec := httptest.NewRecorder()
		h.HandleLogin(rec, req)
		return rec.Code
	}

	attempt("wrong")
	attempt("wrong")
	if code := attempt(testutil.TestPassword); code != http.StatusOK {
		t.Fatalf("login within window: status = %d, want 200", code)
	}
	// The successful login cleared the counter, so two more failures fit.
	attempt("wrong")
	if code := attempt("wrong"); code != http.StatusUnauthorized {
		t.Fatalf("failure after reset: status = %d, want 401", code)
	}
}

func TestLoginValidatesPayload(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{"username": "jsmith"})
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWhoAmI(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	campus := fx.CreateCampus(ctx, "Main")
	user := fx.CreateUser(ctx, "jsmith", models.RoleStudent, campus.ID)

	req := testutil.WithUser(httptest.NewRequest(http.MethodGet, "/auth", nil), &user)
	rec := httptest.NewRecorder()
	h.HandleWhoAmI(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got models.User
	testutil.DecodeJSON(t, rec, &got)
	if got.Username != "jsmith" {
		t.Errorf("username = %q", got.Username)
	}

	rec = httptest.NewRecorder()
	h.HandleWhoAmI(rec, httptest.NewRequest(http.MethodGet, "/auth", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}
}
