// Package auth serves login and the current-principal lookup.
package auth

import (
	"context"
	"net/http"

	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/app/system/apperr"
	sysauth "github.com/campushub/campushub/internal/app/system/auth"
	"github.com/campushub/campushub/internal/app/system/authutil"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/inputval"
	"github.com/campushub/campushub/internal/app/system/ratelimit"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the authentication endpoints.
type Handler struct {
	Users  *userstore.Store
	Tokens *sysauth.TokenManager
	Limits *ratelimit.LoginLimiter
	Log    *zap.Logger
}

// NewHandler constructs an auth Handler.
func NewHandler(db *mongo.Database, tokens *sysauth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  userstore.New(db),
		Tokens: tokens,
		Limits: ratelimit.NewLoginLimiter(),
		Log:    logger,
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// HandleLogin handles POST /auth/login.
//
// Unknown usernames and wrong passwords produce the same 401 so the
// response does not reveal which part failed. The signed token goes out
// both in the body and as an HttpOnly cookie.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := inputval.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	if !h.Limits.Check(r, req.Username) {
		h.Log.Warn("login throttled",
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("username", req.Username))
		httpjson.Error(w, h.Log, apperr.RateLimited("too many login attempts"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err == mongo.ErrNoDocuments {
		httpjson.Error(w, h.Log, apperr.Unauthorized("username or password is incorrect"))
		return
	}
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if !authutil.CheckPassword(req.Password, u.PasswordHash) {
		httpjson.Error(w, h.Log, apperr.Unauthorized("username or password is incorrect"))
		return
	}

	token, expires, err := h.Tokens.IssueToken(u.ID)
	if err != nil {
		h.Log.Error("token signing failed", zap.Error(err))
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Limits.ResetUsername(req.Username)
	h.Tokens.SetTokenCookie(w, token, expires)
	httpjson.Write(w, http.StatusOK, loginResponse{AccessToken: token})
}

// HandleWhoAmI handles GET /auth: the authenticated principal's record.
func (h *Handler) HandleWhoAmI(w http.ResponseWriter, r *http.Request) {
	u, ok := sysauth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, h.Log, apperr.Unauthorized("missing or invalid credentials"))
		return
	}
	httpjson.Write(w, http.StatusOK, u)
}
