// Package courses serves the course catalog: course CRUD plus the
// embedded lecture and attachment operations.
//
// A course's cover image and its lectures' attachments live in object
// storage; the document stores their keys. The create path is two-phase
// because the storage key embeds the generated course id: insert first,
// then upload the cover and $set cover_image.
package courses

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/campushub/campushub/internal/app/policy/coursepolicy"
	campusstore "github.com/campushub/campushub/internal/app/store/campuses"
	coursestore "github.com/campushub/campushub/internal/app/store/courses"
	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/app/system/apperr"
	"github.com/campushub/campushub/internal/app/system/auth"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/inputval"
	"github.com/campushub/campushub/internal/app/system/sanitize"
	"github.com/campushub/campushub/internal/app/system/storage"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"github.com/campushub/campushub/internal/domain/models"
)

// Handler owns the course endpoints.
type Handler struct {
	Courses  *coursestore.Store
	Users    *userstore.Store
	Campuses *campusstore.Store
	Storage  storage.Store
	Log      *zap.Logger
}

// NewHandler constructs a courses Handler bound to the Mongo database
// and the object store.
func NewHandler(db *mongo.Database, store storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Courses:  coursestore.New(db),
		Users:    userstore.New(db),
		Campuses: campusstore.New(db),
		Storage:  store,
		Log:      logger,
	}
}

// courseID parses the {courseID} route param. A malformed id reads the
// same as an absent course.
func courseID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "courseID"))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("course not found")
	}
	return id, nil
}

// resolveTeacher accepts either a user ObjectID or a username and
// returns the teacher's id. Non-teachers and unknown refs are 404.
func (h *Handler) resolveTeacher(ctx context.Context, ref string) (primitive.ObjectID, error) {
	var (
		u   *models.User
		err error
	)
	if id, hexErr := primitive.ObjectIDFromHex(ref); hexErr == nil {
		u, err = h.Users.GetByID(ctx, id)
	} else {
		u, err = h.Users.GetByUsername(ctx, ref)
	}
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return primitive.NilObjectID, apperr.NotFound("teacher not found")
		}
		return primitive.NilObjectID, err
	}
	if !u.IsTeacher() {
		return primitive.NilObjectID, apperr.NotFound("teacher not found")
	}
	return u.ID, nil
}

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

// coverKey is the storage key for a course's cover image.
func coverKey(id primitive.ObjectID) string { return "courses/" + id.Hex() }

// uploadCover decodes the base64 cover payload and stores it under the
// course's key, returning the key.
func (h *Handler) uploadCover(ctx context.Context, id primitive.ObjectID, payload, contentType string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", apperr.Validation("cover must be base64-encoded", map[string]string{"cover": "base64"})
	}
	key := coverKey(id)
	if err := h.Storage.Put(ctx, key, bytes.NewReader(data), &storage.PutOptions{ContentType: contentType}); err != nil {
		return "", err
	}
	return key, nil
}

type createCourseRequest struct {
	Campus        string `json:"campus" validate:"required"`
	Teacher       string `json:"teacher" validate:"required"`
	OriginalPrice int64  `json:"original_price" validate:"gte=0"`
	Description   string `json:"description"`
	Cover         string `json:"cover"`
	CoverType     string `json:"cover_type"`
}

// HandleCreate handles POST /courses (requires course_admin).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := inputval.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	campusID, err := h.mustCampus(ctx, req.Campus)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	teacherID, err := h.resolveTeacher(ctx, req.Teacher)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	course, err := h.Courses.Create(ctx, models.Course{
		Campus:        campusID,
		Teacher:       teacherID,
		OriginalPrice: req.OriginalPrice,
		Description:   sanitize.UGC(req.Description),
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	// Phase two: the cover key embeds the id we just got.
	if req.Cover != "" {
		key, err := h.uploadCover(ctx, course.ID, req.Cover, req.CoverType)
		if err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		if err := h.Courses.SetCoverImage(ctx, course.ID, key); err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		course.CoverImage = key
	}

	h.Log.Info("course created",
		zap.String("course", course.ID.Hex()),
		zap.String("teacher", teacherID.Hex()))
	httpjson.Write(w, http.StatusCreated, course)
}

// HandleList handles GET /courses?campus=&teacher=. The list read is
// open and unscoped; only by-id reads apply the role scope.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var campus, teacher *primitive.ObjectID
	if hexID := r.URL.Query().Get("campus"); hexID != "" {
		id, err := primitive.ObjectIDFromHex(hexID)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.Validation("invalid campus id", map[string]string{"campus": "objectid"}))
			return
		}
		campus = &id
	}
	if hexID := r.URL.Query().Get("teacher"); hexID != "" {
		id, err := primitive.ObjectIDFromHex(hexID)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.Validation("invalid teacher id", map[string]string{"teacher": "objectid"}))
			return
		}
		teacher = &id
	}

	list, err := h.Courses.List(ctx, campus, teacher)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Course{}
	}
	httpjson.Write(w, http.StatusOK, list)
}

// scopedCourse loads the course within the caller's visibility. Absent
// and out-of-scope courses read identically as 404.
func (h *Handler) scopedCourse(ctx context.Context, r *http.Request) (models.Course, error) {
	id, err := courseID(r)
	if err != nil {
		return models.Course{}, err
	}
	principal, _ := auth.CurrentUser(r)
	course, err := h.Courses.GetScoped(ctx, id, coursepolicy.ViewScope(principal))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Course{}, apperr.NotFound("course not found")
		}
		return models.Course{}, err
	}
	return course, nil
}

// HandleGet handles GET /courses/{courseID} (signed in, role-scoped).
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	course, err := h.scopedCourse(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, course)
}

type updateCourseRequest struct {
	Campus        *string `json:"campus"`
	Teacher       *string `json:"teacher"`
	OriginalPrice *int64  `json:"original_price"`
	Description   *string `json:"description"`
	Cover         *string `json:"cover"`
	CoverType     string  `json:"cover_type"`
}

// HandleUpdate handles PUT /courses/{courseID} (requires course_admin).
// Partial update; an empty body is a no-op that returns the course.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	var req updateCourseRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	set := bson.M{}
	if req.Campus != nil {
		campusID, err := h.mustCampus(ctx, *req.Campus)
		if err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		set["campus"] = campusID
	}
	if req.Teacher != nil {
		teacherID, err := h.resolveTeacher(ctx, *req.Teacher)
		if err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		set["teacher"] = teacherID
	}
	if req.OriginalPrice != nil {
		if *req.OriginalPrice < 0 {
			httpjson.Error(w, h.Log, apperr.Validation("price must not be negative", map[string]string{"original_price": "gte"}))
			return
		}
		set["original_price"] = *req.OriginalPrice
	}
	if req.Description != nil {
		set["description"] = sanitize.UGC(*req.Description)
	}
	if req.Cover != nil {
		key, err := h.uploadCover(ctx, id, *req.Cover, req.CoverType)
		if err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		set["cover_image"] = key
	}

	matched, err := h.Courses.Update(ctx, id, set)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if matched == 0 {
		httpjson.Error(w, h.Log, apperr.NotFound("course not found"))
		return
	}

	course, err := h.Courses.GetByID(ctx, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, course)
}

// HandleDelete handles DELETE /courses/{courseID} (signed in,
// role-scoped). Student enrollments are cleaned up before the document
// goes. Storage objects are logged, not deleted; they become orphans
// reclaimed out of band.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	course, err := h.scopedCourse(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	pulled, err := h.Users.PullEnrolledCourse(ctx, course.ID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	if course.HasCover() {
		h.Log.Info("storage object orphaned by course delete",
			zap.String("key", course.CoverImage))
	}
	for _, lec := range course.Lectures {
		for _, att := range lec.Attachments {
			h.Log.Info("storage object orphaned by course delete",
				zap.String("key", attachmentKey(course.ID, lec.ID, att.Filename)))
		}
	}

	deleted, err := h.Courses.Delete(ctx, course.ID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("course deleted",
		zap.String("course", course.ID.Hex()),
		zap.Int64("enrollments_pulled", pulled))
	httpjson.Write(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
