package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/campushub/campushub/internal/domain/models"
)

// stubFetcher serves one in-memory user, like the user store fetcher.
// An unknown id reads as mongo.ErrNoDocuments, a set err as an outage.
type stubFetcher struct {
	user *models.User
	err  error
}

func (f *stubFetcher) FetchUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, mongo.ErrNoDocuments
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T, u *models.User) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(testSecret, time.Hour, false, &stubFetcher{user: u}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return tm
}

func TestNewTokenManagerRejectsEmptySecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour, false, &stubFetcher{}, zap.NewNop()); err == nil {
		t.Fatal("empty secret accepted")
	}
}

func TestIssueAndParseToken(t *testing.T) {
	tm := newTestManager(t, nil)
	userID := primitive.NewObjectID()

	token, expires, err := tm.IssueToken(userID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if until := time.Until(expires); until < 50*time.Minute || until > 70*time.Minute {
		t.Errorf("expiry %v not near the configured ttl", until)
	}

	parsed, err := tm.parseSubject(token)
	if err != nil {
		t.Fatalf("parseSubject: %v", err)
	}
	if parsed != userID {
		t.Errorf("subject = %s, want %s", parsed.Hex(), userID.Hex())
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	tm := newTestManager(t, nil)
	other, err := NewTokenManager("another-secret-another-secret-xx", time.Hour, false, &stubFetcher{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	token, _, err := other.IssueToken(primitive.NewObjectID())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tm.parseSubject(token); err == nil {
		t.Error("token signed with a different secret accepted")
	}
}

func echoPrincipal(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := CurrentUser(r); ok {
			w.Header().Set("X-Principal", u.Username)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoadTokenUserFromBearerHeader(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Username: "jsmith", Role: models.RoleStudent}
	tm := newTestManager(t, user)
	token, _, err := tm.IssueToken(user.ID)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	tm.LoadTokenUser(echoPrincipal(t)).ServeHTTP(rec, req)

	if rec.Header().Get("X-Principal") != "jsmith" {
		t.Error("principal not loaded from bearer token")
	}
}

func TestLoadTokenUserFromCookie(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Username: "jsmith", Role: models.RoleStudent}
	tm := newTestManager(t, user)
	token, expires, err := tm.IssueToken(user.ID)
	if err != nil {
		t.Fatal(err)
	}

	// Round-trip through the cookie the login handler sets.
	setRec := httptest.NewRecorder()
	tm.SetTokenCookie(setRec, token, expires)
	cookies := setRec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != TokenCookieName {
		t.Fatalf("cookies = %v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	tm.LoadTokenUser(echoPrincipal(t)).ServeHTTP(rec, req)

	if rec.Header().Get("X-Principal") != "jsmith" {
		t.Error("principal not loaded from cookie token")
	}
}

func TestLoadTokenUserPassesAnonymousThrough(t *testing.T) {
	tm := newTestManager(t, nil)

	for name, set := range map[string]func(*http.Request){
		"no token":      func(r *http.Request) {},
		"garbage token": func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") },
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		set(req)
		rec := httptest.NewRecorder()
		tm.LoadTokenUser(echoPrincipal(t)).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want pass-through 200", name, rec.Code)
		}
		if rec.Header().Get("X-Principal") != "" {
			t.Errorf("%s: unexpected principal", name)
		}
	}
}

func TestLoadTokenUserStaleSubjectIsAnonymous(t *testing.T) {
	// Token for a user the fetcher no longer knows (deleted account).
	tm := newTestManager(t, nil)
	token, _, err := tm.IssueToken(primitive.NewObjectID())
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	tm.LoadTokenUser(echoPrincipal(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Header().Get("X-Principal") != "" {
		t.Error("stale token subject should read as anonymous")
	}
}

func TestLoadTokenUserFetchFailureIs500(t *testing.T) {
	// A database outage must surface as a server error, not demote the
	// caller to anonymous and report 401/403.
	tm, err := NewTokenManager(testSecret, time.Hour, false,
		&stubFetcher{err: errors.New("connection reset")}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	token, _, err := tm.IssueToken(primitive.NewObjectID())
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	tm.LoadTokenUser(echoPrincipal(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if rec.Header().Get("X-Principal") != "" {
		t.Error("handler ran despite the fetch failure")
	}
}

func TestRequireSignedIn(t *testing.T) {
	h := RequireSignedIn(echoPrincipal(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}

	req := WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil),
		&models.User{ID: primitive.NewObjectID(), Username: "u", Role: models.RoleStudent})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("signed in: status = %d, want 200", rec.Code)
	}
}

func TestRequireCapability(t *testing.T) {
	h := RequireCapability(models.CapCourseAdmin)(echoPrincipal(t))

	// Anonymous: 401.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}

	// Admin without the capability: 403.
	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin, Permissions: []string{models.CapUserAdmin}}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil), admin))
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong capability: status = %d, want 403", rec.Code)
	}

	// Student with the tag in permissions: still 403, capabilities only
	// count for admins.
	student := &models.User{ID: primitive.NewObjectID(), Role: models.RoleStudent, Permissions: []string{models.CapCourseAdmin}}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil), student))
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want 403", rec.Code)
	}

	// Admin with the capability: through.
	courseAdmin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin, Permissions: []string{models.CapCourseAdmin}}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil), courseAdmin))
	if rec.Code != http.StatusOK {
		t.Errorf("holder: status = %d, want 200", rec.Code)
	}
}
