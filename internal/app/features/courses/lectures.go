// internal/app/features/courses/lectures.go
//
// Lecture and attachment endpoints. Both are embedded in the course
// document, so every mutation here is one array update; the lecture id
// is a uuid minted at creation.

package courses

import (
	"context"
	"net/http"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/campushub/campushub/internal/app/system/apperr"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/inputval"
	"github.com/campushub/campushub/internal/app/system/sanitize"
	"github.com/campushub/campushub/internal/app/system/storage"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"github.com/campushub/campushub/internal/domain/models"
)

// maxAttachmentMemory bounds the in-memory portion of multipart parses;
// larger files spill to temp files.
const maxAttachmentMemory = 32 << 20

// attachmentKey is the storage key for a lecture attachment.
func attachmentKey(courseID primitive.ObjectID, lectureID, filename string) string {
	return path.Join("courses", courseID.Hex(), "lectures", lectureID, "attachments", filename)
}

type createLectureRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// HandleAddLecture handles POST /courses/{courseID}/lectures (requires
// course_admin).
func (h *Handler) HandleAddLecture(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	var req createLectureRequest
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

	lec := models.Lecture{
		ID:          uuid.NewString(),
		Title:       sanitize.UGC(req.Title),
		Description: sanitize.UGC(req.Description),
	}
	matched, err := h.Courses.AddLecture(ctx, id, lec)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if matched == 0 {
		httpjson.Error(w, h.Log, apperr.NotFound("course not found"))
		return
	}

	httpjson.Write(w, http.StatusCreated, map[string]string{"id": lec.ID})
}

// HandleListLectures handles GET /courses/{courseID}/lectures (signed
// in, role-scoped through the course).
func (h *Handler) HandleListLectures(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	course, err := h.scopedCourse(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	lectures := course.Lectures
	if lectures == nil {
		lectures = []models.Lecture{}
	}
	httpjson.Write(w, http.StatusOK, lectures)
}

type updateLectureRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// HandleUpdateLecture handles PUT
// /courses/{courseID}/lectures/{lectureID} (requires course_admin).
// An unmatched lecture id is a quiet no-op, reported in the count.
func (h *Handler) HandleUpdateLecture(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	lectureID := chi.URLParam(r, "lectureID")

	var req updateLectureRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	fields := bson.M{}
	if req.Title != nil {
		fields["title"] = sanitize.UGC(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = sanitize.UGC(*req.Description)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	matched, err := h.Courses.UpdateLecture(ctx, id, lectureID, fields)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]int64{"updated": matched})
}

// HandleDeleteLecture handles DELETE
// /courses/{courseID}/lectures/{lectureID} (requires course_admin).
// An unmatched lecture id is a quiet no-op, reported in the count.
func (h *Handler) HandleDeleteLecture(w http.ResponseWriter, r *http.Request) {
	id, err := courseID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	lectureID := chi.URLParam(r, "lectureID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	deleted, err := h.Courses.DeleteLecture(ctx, id, lectureID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// mustLecture loads the course (unscoped, the route already gates on
// course_admin) and verifies the lecture exists.
func (h *Handler) mustLecture(ctx context.Context, r *http.Request) (models.Course, *models.Lecture, error) {
	id, err := courseID(r)
	if err != nil {
		return models.Course{}, nil, err
	}
	course, err := h.Courses.GetByID(ctx, id)
	if err != nil {
		return models.Course{}, nil, apperr.NotFound("course not found")
	}
	lec := course.FindLecture(chi.URLParam(r, "lectureID"))
	if lec == nil {
		return models.Course{}, nil, apperr.NotFound("lecture not found")
	}
	return course, lec, nil
}

// HandleAddAttachment handles POST
// /courses/{courseID}/lectures/{lectureID}/attachments (requires
// course_admin). Multipart upload: the "file" part carries the content,
// the optional "name" field overrides the display name.
func (h *Handler) HandleAddAttachment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	course, lec, err := h.mustLecture(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentMemory); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("expected multipart form", nil))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("missing file part", map[string]string{"file": "required"}))
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "." || filename == "/" || filename == "" {
		httpjson.Error(w, h.Log, apperr.Validation("invalid filename", map[string]string{"file": "filename"}))
		return
	}
	name := r.FormValue("name")
	if name == "" {
		name = filename
	}
	contentType := header.Header.Get("Content-Type")

	key := attachmentKey(course.ID, lec.ID, filename)
	if err := h.Storage.Put(ctx, key, file, &storage.PutOptions{ContentType: contentType}); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	att := models.LectureAttachment{
		Name:      sanitize.UGC(name),
		Filename:  filename,
		Type:      contentType,
		BucketURL: h.Storage.URL(key),
	}
	matched, err := h.Courses.AddAttachment(ctx, course.ID, lec.ID, att)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if matched == 0 {
		httpjson.Error(w, h.Log, apperr.NotFound("lecture not found"))
		return
	}

	h.Log.Info("attachment uploaded",
		zap.String("course", course.ID.Hex()),
		zap.String("lecture", lec.ID),
		zap.String("key", key))
	httpjson.Write(w, http.StatusCreated, att)
}

// HandleDownloadAttachment handles GET
// /courses/{courseID}/lectures/{lectureID}/attachments/{filename}
// (signed in, role-scoped through the course). Returns a time-limited
// download URL.
func (h *Handler) HandleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	course, err := h.scopedCourse(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	lec := course.FindLecture(chi.URLParam(r, "lectureID"))
	if lec == nil {
		httpjson.Error(w, h.Log, apperr.NotFound("lecture not found"))
		return
	}
	filename := chi.URLParam(r, "filename")

	found := false
	for _, att := range lec.Attachments {
		if att.Filename == filename {
			found = true
			break
		}
	}
	if !found {
		httpjson.Error(w, h.Log, apperr.NotFound("attachment not found"))
		return
	}

	url, err := h.Storage.PresignedURL(ctx, attachmentKey(course.ID, lec.ID, filename), &storage.PresignOptions{
		Expires:            storage.DefaultPresignExpiry,
		ContentDisposition: "attachment; filename=" + filename,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"url": url})
}

// HandleDeleteAttachment handles DELETE
// /courses/{courseID}/lectures/{lectureID}/attachments/{filename}
// (requires course_admin). Pulls every attachment with the filename and
// returns the count; the storage object is logged, not deleted.
func (h *Handler) HandleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	course, lec, err := h.mustLecture(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	filename := chi.URLParam(r, "filename")

	var count int64
	for _, att := range lec.Attachments {
		if att.Filename == filename {
			count++
		}
	}

	if err := h.Courses.DeleteAttachments(ctx, course.ID, lec.ID, filename); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if count > 0 {
		h.Log.Info("storage object orphaned by attachment delete",
			zap.String("key", attachmentKey(course.ID, lec.ID, filename)))
	}

	httpjson.Write(w, http.StatusOK, map[string]int64{"deleted": count})
}
