package coursestore

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campushub/campushub/internal/domain/models"
	"github.com/campushub/campushub/internal/testutil"
)

func seedCourse(t *testing.T, fx *testutil.Fixtures) (models.Campus, models.User, models.Course) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	campus := fx.CreateCampus(ctx, "Main")
	teacher := fx.CreateUser(ctx, "teach", models.RoleTeacher, campus.ID)
	course := fx.CreateCourse(ctx, campus.ID, teacher.ID, 25000)
	return campus, teacher, course
}

func TestCreateThenSetCoverImage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	created, err := store.Create(ctx, models.Course{
		Campus:        primitive.NewObjectID(),
		Teacher:       primitive.NewObjectID(),
		OriginalPrice: 9900,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.HasCover() {
		t.Error("new course already has a cover")
	}

	key := "courses/" + created.ID.Hex()
	if err := store.SetCoverImage(ctx, created.ID, key); err != nil {
		t.Fatalf("SetCoverImage: %v", err)
	}
	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CoverImage != key {
		t.Errorf("cover = %q, want %q", got.CoverImage, key)
	}
}

func TestGetScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	_, teacher, course := seedCourse(t, fx)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)

	// Unrestricted scope sees it.
	if _, err := store.GetScoped(ctx, course.ID, bson.M{}); err != nil {
		t.Errorf("unrestricted GetScoped: %v", err)
	}

	// Matching teacher scope sees it.
	if _, err := store.GetScoped(ctx, course.ID, bson.M{"teacher": teacher.ID}); err != nil {
		t.Errorf("teacher GetScoped: %v", err)
	}

	// Non-enrolled student scope reads it as absent.
	_, err := store.GetScoped(ctx, course.ID, bson.M{"enrolled_students": primitive.NewObjectID()})
	if err != mongo.ErrNoDocuments {
		t.Errorf("outsider GetScoped err = %v, want ErrNoDocuments", err)
	}
}

func TestUpdateEmptySetIsNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	_, _, course := seedCourse(t, fx)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	matched, err := store.Update(ctx, course.ID, bson.M{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if matched != 1 {
		t.Errorf("matched = %d, want no-op success", matched)
	}

	matched, err = store.Update(ctx, course.ID, bson.M{"description": "new"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if matched != 1 {
		t.Errorf("matched = %d", matched)
	}
	got, err := store.GetByID(ctx, course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != "new" {
		t.Errorf("description = %q", got.Description)
	}
}

func TestLectureLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	_, _, course := seedCourse(t, fx)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)

	lec := models.Lecture{ID: "lec-1", Title: "Intro"}
	matched, err := store.AddLecture(ctx, course.ID, lec)
	if err != nil {
		t.Fatalf("AddLecture: %v", err)
	}
	if matched != 1 {
		t.Errorf("AddLecture matched = %d", matched)
	}

	// Absent course: matched 0.
	matched, err = store.AddLecture(ctx, primitive.NewObjectID(), lec)
	if err != nil {
		t.Fatalf("AddLecture(absent): %v", err)
	}
	if matched != 0 {
		t.Errorf("AddLecture(absent) matched = %d", matched)
	}

	// Positional update reaches only the matched lecture.
	matched, err = store.UpdateLecture(ctx, course.ID, "lec-1", bson.M{"title": "Welcome"})
	if err != nil {
		t.Fatalf("UpdateLecture: %v", err)
	}
	if matched != 1 {
		t.Errorf("UpdateLecture matched = %d", matched)
	}
	matched, err = store.UpdateLecture(ctx, course.ID, "ghost", bson.M{"title": "x"})
	if err != nil {
		t.Fatalf("UpdateLecture(ghost): %v", err)
	}
	if matched != 0 {
		t.Errorf("UpdateLecture(ghost) matched = %d, want quiet no-op", matched)
	}

	got, err := store.GetByID(ctx, course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if l := got.FindLecture("lec-1"); l == nil || l.Title != "Welcome" {
		t.Errorf("lecture after update = %+v", l)
	}

	// Delete: quiet no-op on a miss, count 1 on a hit.
	deleted, err := store.DeleteLecture(ctx, course.ID, "ghost")
	if err != nil {
		t.Fatalf("DeleteLecture(ghost): %v", err)
	}
	if deleted != 0 {
		t.Errorf("DeleteLecture(ghost) = %d", deleted)
	}
	deleted, err = store.DeleteLecture(ctx, course.ID, "lec-1")
	if err != nil {
		t.Fatalf("DeleteLecture: %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteLecture = %d", deleted)
	}
}

func TestAttachmentLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	_, _, course := seedCourse(t, fx)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	if _, err := store.AddLecture(ctx, course.ID, models.Lecture{ID: "lec-1", Title: "Intro"}); err != nil {
		t.Fatal(err)
	}

	att := models.LectureAttachment{Name: "Notes", Filename: "notes.pdf", Type: "application/pdf"}
	matched, err := store.AddAttachment(ctx, course.ID, "lec-1", att)
	if err != nil {
		t.Fatalf("AddAttachment: %v", err)
	}
	if matched != 1 {
		t.Errorf("AddAttachment matched = %d", matched)
	}

	matched, err = store.AddAttachment(ctx, course.ID, "ghost", att)
	if err != nil {
		t.Fatalf("AddAttachment(ghost): %v", err)
	}
	if matched != 0 {
		t.Errorf("AddAttachment(ghost) matched = %d", matched)
	}

	if err := store.DeleteAttachments(ctx, course.ID, "lec-1", "notes.pdf"); err != nil {
		t.Fatalf("DeleteAttachments: %v", err)
	}
	got, err := store.GetByID(ctx, course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if l := got.FindLecture("lec-1"); l == nil || len(l.Attachments) != 0 {
		t.Errorf("attachments after delete = %+v", l)
	}
}

func TestAddEnrolledStudentIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	_, _, course := seedCourse(t, fx)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	studentID := primitive.NewObjectID()
	for i := 0; i < 2; i++ {
		if err := store.AddEnrolledStudent(ctx, course.ID, studentID); err != nil {
			t.Fatalf("AddEnrolledStudent: %v", err)
		}
	}
	got, err := store.GetByID(ctx, course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.EnrolledStudents) != 1 {
		t.Errorf("enrolled students = %v", got.EnrolledStudents)
	}
}
