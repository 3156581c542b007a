// Package users serves account registration, lookup, update, and
// deletion for students, teachers, and admins. Students self-register;
// teachers and admins are created by a sys_owner.
package users

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/campushub/campushub/internal/app/policy/userpolicy"
	campusstore "github.com/campushub/campushub/internal/app/store/campuses"
	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/app/system/apperr"
	"github.com/campushub/campushub/internal/app/system/auth"
	"github.com/campushub/campushub/internal/app/system/authutil"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/inputval"
	"github.com/campushub/campushub/internal/app/system/sanitize"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"github.com/campushub/campushub/internal/domain/models"
)

// Handler owns the user endpoints.
type Handler struct {
	Users    *userstore.Store
	Campuses *campusstore.Store
	Log      *zap.Logger
}

// NewHandler constructs a users Handler bound to the Mongo database.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		Campuses: campusstore.New(db),
		Log:      logger,
	}
}

// mustCampus resolves a campus hex id, returning NotFound when the id
// is malformed or names no campus.
func (h *Handler) mustCampus(ctx context.Context, hexID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("campus not found")
	}
	if _, err := h.Campuses.GetByID(ctx, id); err != nil {
		if err == mongo.ErrNoDocuments {
			return primitive.NilObjectID, apperr.NotFound("campus not found")
		}
		return primitive.NilObjectID, err
	}
	return id, nil
}

// HandleList handles GET /users?type=&campus= (requires user_admin).
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	role := r.URL.Query().Get("type")
	if role != "" && !models.ValidRole(role) {
		httpjson.Error(w, h.Log, apperr.Validation("unknown user type", map[string]string{"type": role}))
		return
	}

	var campus *primitive.ObjectID
	if hexID := r.URL.Query().Get("campus"); hexID != "" {
		id, err := h.mustCampus(ctx, hexID)
		if err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		campus = &id
	}

	list, err := h.Users.List(ctx, role, campus)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.User{}
	}
	httpjson.Write(w, http.StatusOK, list)
}

type passwordResetRequest struct {
	Password string `json:"password" validate:"required"`
}

// HandlePasswordReset handles PUT /users/{username}. The route is open:
// any caller may reset any user's password by username. Only the
// password field is applied; everything else in the body is ignored.
func (h *Handler) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req passwordResetRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := inputval.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	matched, err := h.Users.Update(ctx, username, bson.M{"password_hash": hash})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if matched == 0 {
		httpjson.Error(w, h.Log, apperr.NotFound("user not found"))
		return
	}

	h.Log.Info("password reset", zap.String("username", username))
	httpjson.Write(w, http.StatusOK, map[string]int64{"updated": matched})
}

type createUserRequest struct {
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name"`
	Telephone   string `json:"telephone"`
	Campus      string `json:"campus" validate:"required"`

	// Student fields
	Wx  string `json:"wx"`
	Uni string `json:"uni"`

	// Teacher fields
	Abn string `json:"abn"`

	// Admin fields
	Permissions []string `json:"permissions"`
}

// createUser is the shared path behind POST /students, /teachers, and
// /admins. The role comes from the route, never from the body.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request, role string) {
	var req createUserRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := inputval.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	campusID, err := h.mustCampus(ctx, req.Campus)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	u := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		DisplayName:  sanitize.UGC(req.DisplayName),
		Telephone:    req.Telephone,
		Campus:       campusID,
		Role:         role,
	}
	switch role {
	case models.RoleStudent:
		u.Wx = req.Wx
		u.Uni = req.Uni
	case models.RoleTeacher:
		u.Abn = req.Abn
	case models.RoleAdmin:
		u.Permissions = req.Permissions
	}

	created, err := h.Users.Create(ctx, u)
	if err == userstore.ErrDuplicateUsername {
		httpjson.Error(w, h.Log, apperr.Duplicate("username already taken"))
		return
	}
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("user created",
		zap.String("username", created.Username),
		zap.String("role", created.Role))
	httpjson.Write(w, http.StatusCreated, created)
}

// HandleCreateStudent handles POST /students (open registration).
func (h *Handler) HandleCreateStudent(w http.ResponseWriter, r *http.Request) {
	h.createUser(w, r, models.RoleStudent)
}

// HandleCreateTeacher handles POST /teachers (requires sys_owner).
func (h *Handler) HandleCreateTeacher(w http.ResponseWriter, r *http.Request) {
	h.createUser(w, r, models.RoleTeacher)
}

// HandleCreateAdmin handles POST /admins (requires sys_owner).
func (h *Handler) HandleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	h.createUser(w, r, models.RoleAdmin)
}

// getUser loads the named user and verifies both the expected role and
// the caller's access. Missing users and role mismatches are the same
// 404 so the endpoint does not leak which usernames exist as what.
func (h *Handler) getUser(ctx context.Context, r *http.Request, role string) (*models.User, error) {
	username := chi.URLParam(r, "username")

	principal, _ := auth.CurrentUser(r)
	if !userpolicy.CanAccessUser(principal, username) {
		return nil, apperr.PermissionDenied()
	}

	u, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	if u.Role != role {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

// handleGetUser handles GET /{students,admins}/{username}.
func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request, role string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.getUser(ctx, r, role)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, u)
}

type updateUserRequest struct {
	Password    *string `json:"password"`
	DisplayName *string `json:"display_name"`
	Telephone   *string `json:"telephone"`
	Campus      *string `json:"campus"`

	Wx  *string `json:"wx"`
	Uni *string `json:"uni"`
	Abn *string `json:"abn"`

	Permissions []string `json:"permissions"`
}

// handleUpdateUser handles PUT /{students,admins}/{username}. Pointer
// fields distinguish "absent" from "set to empty". A permissions change
// is applied only when the caller holds sys_owner; for anyone else the
// field is dropped without error.
func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request, role string) {
	var req updateUserRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.getUser(ctx, r, role)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	set := bson.M{}
	if req.Password != nil {
		hash, err := authutil.HashPassword(*req.Password)
		if err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		set["password_hash"] = hash
	}
	if req.DisplayName != nil {
		set["display_name"] = sanitize.UGC(*req.DisplayName)
	}
	if req.Telephone != nil {
		set["telephone"] = *req.Telephone
	}
	if req.Campus != nil {
		campusID, err := h.mustCampus(ctx, *req.Campus)
		if err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		set["campus"] = campusID
	}
	if req.Wx != nil {
		set["wx"] = *req.Wx
	}
	if req.Uni != nil {
		set["uni"] = *req.Uni
	}
	if req.Abn != nil {
		set["abn"] = *req.Abn
	}
	if req.Permissions != nil {
		principal, _ := auth.CurrentUser(r)
		if userpolicy.CanChangePermissions(principal) {
			set["permissions"] = req.Permissions
		}
	}

	if len(set) == 0 {
		httpjson.Write(w, http.StatusOK, u)
		return
	}

	if _, err := h.Users.Update(ctx, u.Username, set); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	updated, err := h.Users.GetByUsername(ctx, u.Username)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// handleDeleteUser handles DELETE /{students,admins}/{username}.
func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request, role string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.getUser(ctx, r, role)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	deleted, err := h.Users.Delete(ctx, u.Username)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("user deleted",
		zap.String("username", u.Username),
		zap.String("role", u.Role))
	httpjson.Write(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// Student record endpoints.

func (h *Handler) HandleGetStudent(w http.ResponseWriter, r *http.Request) {
	h.handleGetUser(w, r, models.RoleStudent)
}

func (h *Handler) HandleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	h.handleUpdateUser(w, r, models.RoleStudent)
}

func (h *Handler) HandleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	h.handleDeleteUser(w, r, models.RoleStudent)
}

// Admin record endpoints. The routes additionally gate on sys_owner.

func (h *Handler) HandleGetAdmin(w http.ResponseWriter, r *http.Request) {
	h.handleGetUser(w, r, models.RoleAdmin)
}

func (h *Handler) HandleUpdateAdmin(w http.ResponseWriter, r *http.Request) {
	h.handleUpdateUser(w, r, models.RoleAdmin)
}

func (h *Handler) HandleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	h.handleDeleteUser(w, r, models.RoleAdmin)
}
