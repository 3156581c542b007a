// Package auth implements JWT authentication for the API.
//
// A TokenManager signs and verifies 30-day HS256 tokens and provides the
// middleware stack: LoadTokenUser resolves the bearer/cookie token into a
// fresh user document on every request (so role and permission changes
// take effect immediately), RequireSignedIn and RequireCapability gate
// routes with 401/403 JSON responses.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/campushub/campushub/internal/app/system/apperr"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TokenCookieName is the cookie carrying the access token. The same
// token is also accepted as an Authorization bearer header.
const TokenCookieName = "access_token_cookie"

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// UserFetcher loads the principal's user document by id. The user store
// provides the implementation; auth stays decoupled from storage.
type UserFetcher interface {
	FetchUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// TokenManager signs, verifies, and resolves access tokens.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	secure  bool
	fetcher UserFetcher
	log     *zap.Logger
}

// NewTokenManager builds a TokenManager. Secure controls the cookie's
// Secure flag (enabled in prod).
func NewTokenManager(secret string, ttl time.Duration, secure bool, fetcher UserFetcher, logger *zap.Logger) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty; provide ≥32 random chars")
	}
	if len(secret) < 32 {
		logger.Warn("jwt secret is short; 32+ chars recommended",
			zap.Int("length", len(secret)))
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret:  []byte(secret),
		ttl:     ttl,
		secure:  secure,
		fetcher: fetcher,
		log:     logger,
	}, nil
}

// IssueToken signs a token for the user id, returning the token string
// and its expiry.
func (tm *TokenManager) IssueToken(userID primitive.ObjectID) (string, time.Time, error) {
	now := time.Now().UTC()
	expires := now.Add(tm.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// SetTokenCookie writes the access-token cookie alongside the body copy
// of the token.
func (tm *TokenManager) SetTokenCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   tm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// parseSubject verifies the token signature and expiry and returns the
// subject user id.
func (tm *TokenManager) parseSubject(tokenString string) (primitive.ObjectID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, errors.New("invalid token")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return primitive.NilObjectID, errors.New("invalid token claims")
	}
	return primitive.ObjectIDFromHex(claims.Subject)
}

// requestToken extracts the token from the Authorization header or the
// access-token cookie.
func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, found := strings.CutPrefix(h, "Bearer "); found {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(TokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the authenticated principal and a found flag.
func CurrentUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*models.User)
	return u, ok
}

func withUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a principal directly. Test helper.
func WithTestUser(r *http.Request, u *models.User) *http.Request {
	return withUser(r, u)
}

// LoadTokenUser injects the principal into context when a valid token is
// presented. Requests without a token pass through anonymous; the gate
// middleware decides whether that is acceptable per route.
func (tm *TokenManager) LoadTokenUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := requestToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := tm.parseSubject(tokenString)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		u, err := tm.fetcher.FetchUser(r.Context(), userID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Token subject no longer exists; treat as anonymous.
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			// A fetch failure is a server fault, not a credential
			// problem; degrading to anonymous would misreport it as
			// 401/403.
			httpjson.Error(w, tm.log, err)
			return
		}
		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn ensures a principal is in context, else 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			httpjson.Error(w, nil, apperr.Unauthorized("missing or invalid credentials"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCapability ensures the principal is an admin holding the named
// capability: 401 when anonymous, 403 otherwise.
func RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				httpjson.Error(w, nil, apperr.Unauthorized("missing or invalid credentials"))
				return
			}
			if !u.HasCapability(capability) {
				httpjson.Error(w, nil, apperr.PermissionDenied())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
