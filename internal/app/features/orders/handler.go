// Package orders serves order placement, listing, and the payment
// transition that links a student into a course.
//
// The price snapshot rule lives here: an order's original_price is
// copied from the course at placement and the client's value is
// ignored. Payment defaults paid_price to that snapshot, then reloads
// the order and, only when the reloaded order is paid, adds the mutual
// enrollment links with $addToSet so a retried payment cannot duplicate
// them. There is no cross-document transaction: a crash between the two
// enrollment writes leaves a repairable one-sided link, never a
// double-charge.
package orders

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/campushub/campushub/internal/app/policy/orderpolicy"
	coursestore "github.com/campushub/campushub/internal/app/store/courses"
	orderstore "github.com/campushub/campushub/internal/app/store/orders"
	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/app/system/apperr"
	"github.com/campushub/campushub/internal/app/system/auth"
	"github.com/campushub/campushub/internal/app/system/httpjson"
	"github.com/campushub/campushub/internal/app/system/inputval"
	"github.com/campushub/campushub/internal/app/system/paging"
	"github.com/campushub/campushub/internal/app/system/timeouts"
	"github.com/campushub/campushub/internal/domain/models"
)

// Handler owns the order endpoints.
type Handler struct {
	Orders  *orderstore.Store
	Courses *coursestore.Store
	Users   *userstore.Store
	Log     *zap.Logger
}

// NewHandler constructs an orders Handler bound to the Mongo database.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Orders:  orderstore.New(db),
		Courses: coursestore.New(db),
		Users:   userstore.New(db),
		Log:     logger,
	}
}

func orderID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orderID"))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("order not found")
	}
	return id, nil
}

type placeOrderRequest struct {
	Student string `json:"student" validate:"required"`
	Course  string `json:"course" validate:"required"`
}

// HandlePlace handles POST /orders (signed in). Callers order for
// themselves unless they hold order_admin.
func (h *Handler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if err := inputval.Struct(req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	studentID, err := primitive.ObjectIDFromHex(req.Student)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.NotFound("student not found"))
		return
	}
	courseID, err := primitive.ObjectIDFromHex(req.Course)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.NotFound("course not found"))
		return
	}

	principal, _ := auth.CurrentUser(r)
	if !orderpolicy.CanPlaceFor(principal, studentID) {
		httpjson.Error(w, h.Log, apperr.PermissionDenied())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	student, err := h.Users.GetByID(ctx, studentID)
	if err != nil || !student.IsStudent() {
		httpjson.Error(w, h.Log, apperr.NotFound("student not found"))
		return
	}
	course, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.NotFound("course not found"))
		return
	}

	// Price snapshot: whatever the client sent is ignored.
	order, err := h.Orders.Create(ctx, models.Order{
		Student:       student.ID,
		Course:        course.ID,
		OriginalPrice: course.OriginalPrice,
	})
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("order placed",
		zap.String("order", order.ID.Hex()),
		zap.String("student", student.ID.Hex()),
		zap.String("course", course.ID.Hex()))
	httpjson.Write(w, http.StatusCreated, order)
}

// listFilter builds the Mongo filter for GET /orders from the caller's
// visibility scope plus the optional user/course/campus/paid params.
// The campus filter goes through the course collection since orders do
// not carry a campus field.
func (h *Handler) listFilter(ctx context.Context, r *http.Request, principal *models.User) (bson.M, error) {
	filter := orderpolicy.ViewScope(principal)
	q := r.URL.Query()

	if hexID := q.Get("user"); hexID != "" {
		id, err := primitive.ObjectIDFromHex(hexID)
		if err != nil {
			return nil, apperr.Validation("invalid user id", map[string]string{"user": "objectid"})
		}
		// The scope already pins the student key for non-admins; the
		// query parameter may only narrow the view, never widen it.
		if scoped, ok := filter["student"]; !ok || scoped == id {
			filter["student"] = id
		}
	}
	if hexID := q.Get("course"); hexID != "" {
		id, err := primitive.ObjectIDFromHex(hexID)
		if err != nil {
			return nil, apperr.Validation("invalid course id", map[string]string{"course": "objectid"})
		}
		filter["course"] = id
	}
	if hexID := q.Get("campus"); hexID != "" {
		id, err := primitive.ObjectIDFromHex(hexID)
		if err != nil {
			return nil, apperr.Validation("invalid campus id", map[string]string{"campus": "objectid"})
		}
		courses, err := h.Courses.List(ctx, &id, nil)
		if err != nil {
			return nil, err
		}
		ids := make([]primitive.ObjectID, 0, len(courses))
		for _, c := range courses {
			ids = append(ids, c.ID)
		}
		filter["course"] = bson.M{"$in": ids}
	}
	if paid := q.Get("paid"); paid != "" {
		b, err := strconv.ParseBool(paid)
		if err != nil {
			return nil, apperr.Validation("invalid paid flag", map[string]string{"paid": "boolean"})
		}
		filter["paid"] = b
	}
	return filter, nil
}

// HandleList handles GET /orders?user=&course=&campus=&paid=&page=
// (signed in, role-scoped, fixed page size).
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	principal, _ := auth.CurrentUser(r)
	filter, err := h.listFilter(ctx, r, principal)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	list, err := h.Orders.List(ctx, filter, paging.ParsePage(r))
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleGet handles GET /orders/{orderID} (signed in, role-scoped).
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	principal, _ := auth.CurrentUser(r)
	order, err := h.Orders.GetScoped(ctx, id, orderpolicy.ViewScope(principal))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.NotFound("order not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, order)
}

// HandleDelete handles DELETE /orders/{orderID} (signed in,
// role-scoped). Deleting a paid order does not undo enrollment.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	principal, _ := auth.CurrentUser(r)
	deleted, err := h.Orders.DeleteScoped(ctx, id, orderpolicy.ViewScope(principal))
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if deleted == 0 {
		httpjson.Error(w, h.Log, apperr.NotFound("order not found"))
		return
	}

	h.Log.Info("order deleted", zap.String("order", id.Hex()))
	httpjson.Write(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

type paymentRequest struct {
	Paid      bool   `json:"paid"`
	PaidPrice *int64 `json:"paid_price"`
}

// HandlePayment handles PUT /orders/{orderID}/payment (signed in,
// role-scoped). paid_price defaults to the order's price snapshot.
func (h *Handler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	var req paymentRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if req.PaidPrice != nil && *req.PaidPrice < 0 {
		httpjson.Error(w, h.Log, apperr.Validation("paid price must not be negative", map[string]string{"paid_price": "gte"}))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	principal, _ := auth.CurrentUser(r)
	order, err := h.Orders.GetScoped(ctx, id, orderpolicy.ViewScope(principal))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, h.Log, apperr.NotFound("order not found"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	paidPrice := order.OriginalPrice
	if req.PaidPrice != nil {
		paidPrice = *req.PaidPrice
	}

	if _, err := h.Orders.UpdatePayment(ctx, order.ID, req.Paid, paidPrice); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	// Reload, then link enrollment only off the stored state. Both
	// writes are $addToSet so replays are harmless.
	updated, err := h.Orders.GetByID(ctx, order.ID)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if updated.Paid {
		if err := h.Courses.AddEnrolledStudent(ctx, updated.Course, updated.Student); err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		if err := h.Users.AddEnrolledCourse(ctx, updated.Student, updated.Course); err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		h.Log.Info("enrollment linked",
			zap.String("order", updated.ID.Hex()),
			zap.String("student", updated.Student.Hex()),
			zap.String("course", updated.Course.Hex()))
	}

	httpjson.Write(w, http.StatusOK, updated)
}
