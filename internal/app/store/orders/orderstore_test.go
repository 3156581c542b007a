package orderstore

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campushub/campushub/internal/app/system/paging"
	"github.com/campushub/campushub/internal/domain/models"
	"github.com/campushub/campushub/internal/testutil"
)

func TestCreateForcesUnpaid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	price := int64(5000)
	created, err := store.Create(ctx, models.Order{
		Student:       primitive.NewObjectID(),
		Course:        primitive.NewObjectID(),
		OriginalPrice: 12000,
		Paid:          true,   // must be ignored
		PaidPrice:     &price, // must be ignored
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Paid {
		t.Error("new order created paid")
	}
	if created.PaidPrice != nil {
		t.Error("new order carries a paid price")
	}
	if created.OriginalPrice != 12000 {
		t.Errorf("original price = %d", created.OriginalPrice)
	}
}

func TestGetScopedAndDeleteScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	studentID := primitive.NewObjectID()
	order := fx.CreateOrder(ctx, studentID, primitive.NewObjectID(), 9900)

	store := New(db)

	if _, err := store.GetScoped(ctx, order.ID, bson.M{"student": studentID}); err != nil {
		t.Errorf("owner GetScoped: %v", err)
	}
	if _, err := store.GetScoped(ctx, order.ID, bson.M{"student": primitive.NewObjectID()}); err != mongo.ErrNoDocuments {
		t.Errorf("outsider GetScoped err = %v, want ErrNoDocuments", err)
	}

	deleted, err := store.DeleteScoped(ctx, order.ID, bson.M{"student": primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("outsider DeleteScoped: %v", err)
	}
	if deleted != 0 {
		t.Errorf("outsider deleted = %d", deleted)
	}

	deleted, err = store.DeleteScoped(ctx, order.ID, bson.M{"student": studentID})
	if err != nil {
		t.Fatalf("owner DeleteScoped: %v", err)
	}
	if deleted != 1 {
		t.Errorf("owner deleted = %d", deleted)
	}
}

func TestListPagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	studentID := primitive.NewObjectID()
	for i := 0; i < paging.PageSize+3; i++ {
		fx.CreateOrder(ctx, studentID, primitive.NewObjectID(), 1000)
	}

	store := New(db)

	page1, err := store.List(ctx, bson.M{"student": studentID}, 1)
	if err != nil {
		t.Fatalf("List(1): %v", err)
	}
	if len(page1) != paging.PageSize {
		t.Errorf("page 1 len = %d, want %d", len(page1), paging.PageSize)
	}

	page2, err := store.List(ctx, bson.M{"student": studentID}, 2)
	if err != nil {
		t.Fatalf("List(2): %v", err)
	}
	if len(page2) != 3 {
		t.Errorf("page 2 len = %d, want 3", len(page2))
	}

	// Stable sort: no overlap between pages.
	seen := map[primitive.ObjectID]bool{}
	for _, o := range page1 {
		seen[o.ID] = true
	}
	for _, o := range page2 {
		if seen[o.ID] {
			t.Errorf("order %s appears on both pages", o.ID.Hex())
		}
	}
}

func TestUpdatePayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	order := fx.CreateOrder(ctx, primitive.NewObjectID(), primitive.NewObjectID(), 9900)

	store := New(db)
	matched, err := store.UpdatePayment(ctx, order.ID, true, 8800)
	if err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}
	if matched != 1 {
		t.Errorf("matched = %d", matched)
	}

	got, err := store.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Paid {
		t.Error("order not paid after update")
	}
	if got.PaidPrice == nil || *got.PaidPrice != 8800 {
		t.Errorf("paid price = %v", got.PaidPrice)
	}
	if got.OriginalPrice != 9900 {
		t.Errorf("original price changed to %d", got.OriginalPrice)
	}

	matched, err = store.UpdatePayment(ctx, primitive.NewObjectID(), true, 1)
	if err != nil {
		t.Fatalf("UpdatePayment(absent): %v", err)
	}
	if matched != 0 {
		t.Errorf("absent matched = %d", matched)
	}
}
