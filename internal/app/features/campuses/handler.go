// Package campuses serves the campus resource: an open list read and a
// capability-gated create.
package campuses

import (
	"context"
	"net/http"

	campusstore "github.com/campushub/campushub/internal/app/store/campuses"
	"github.com/campushub/campushub/internal/app/system/apperr"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/inputval"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"github.com/campushub/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the campus endpoints.
type Handler struct {
	Campuses *campusstore.Store
	Log      *zap.Logger
}

// NewHandler constructs a campuses Handler bound to the Mongo database.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Campuses: campusstore.New(db),
		Log:      logger,
	}
}

// HandleList handles GET /campus: all campuses, open read.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Campuses.List(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Campus{}
	}
	httpjson.Write(w, http.StatusOK, list)
}

type createRequest struct {
	Name string `json:"name" validate:"required"`
}

// HandleCreate handles POST /campus (requires campus_admin).
//
// The name is checked pre-emptively and the unique index catch in the
// store backs it up; both surface as the same duplicate-record error.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
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

	exists, err := h.Campuses.NameExists(ctx, req.Name)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if exists {
		httpjson.Error(w, h.Log, apperr.Duplicate("campus already exists"))
		return
	}

	campus, err := h.Campuses.Create(ctx, models.Campus{Name: req.Name})
	if err == campusstore.ErrDuplicateName {
		httpjson.Error(w, h.Log, apperr.Duplicate("campus already exists"))
		return
	}
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("campus created", zap.String("name", campus.Name))
	httpjson.Write(w, http.StatusCreated, campus)
}
