package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/formworks/formworks/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// newMongoTestStore connects to the database named by MONGO_URI. The suite is
// skipped when the variable is unset, so the document-store paths run wherever
// a server is available without blocking the default run.
func newMongoTestStore(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	st, err := OpenMongo(context.Background(), uri)
	if err != nil {
		t.Fatalf("open mongo: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

// mongoSeedUser creates a user with a unique id and email. Cleanup cascades
// through DeleteUser, so forms, responses, and private users seeded under this
// user are removed with it.
func mongoSeedUser(t *testing.T, st *MongoStore) *models.User {
	t.Helper()
	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     uuid.NewString() + "@example.com",
		FirstName: "Test",
		Password:  "hashed",
		Status:    models.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { _ = st.DeleteUser(context.Background(), user.ID) })
	return user
}

func mongoSeedForm(t *testing.T, st *MongoStore, userID string, fields []models.FormField) *models.Form {
	t.Helper()
	now := time.Now().UTC()
	form := &models.Form{
		ID:                uuid.NewString(),
		UserID:            userID,
		Title:             "Test Form",
		Status:            models.FormStatusActive,
		Visibility:        models.VisibilityPublic,
		Fields:            fields,
		OutputFormats:     []string{models.OutputFormatThankYou},
		ConfirmationStyle: models.ConfirmationTable,
		AllowEditing:      true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := st.CreateForm(context.Background(), form); err != nil {
		t.Fatalf("create form: %v", err)
	}
	return form
}

func mongoSeedResponse(t *testing.T, st *MongoStore, formID string, data map[string]any) *models.Response {
	t.Helper()
	now := time.Now().UTC()
	response := &models.Response{
		ID:          uuid.NewString(),
		FormID:      formID,
		Data:        datatypes.JSONMap(data),
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if err := st.CreateResponse(context.Background(), response); err != nil {
		t.Fatalf("create response: %v", err)
	}
	return response
}

func TestMongoUserLookup(t *testing.T) {
	st := newMongoTestStore(t)
	ctx := context.Background()
	user := mongoSeedUser(t, st)

	found, err := st.GetUserByEmail(ctx, strings.ToUpper(user.Email))
	if err != nil || found == nil || found.ID != user.ID {
		t.Fatalf("expected case-insensitive lookup to find %s, got %+v (%v)", user.ID, found, err)
	}

	missing, err := st.GetUser(ctx, "nope-"+uuid.NewString())
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for missing user, got %+v (%v)", missing, err)
	}

	dup := *user
	dup.ID = uuid.NewString()
	if errCreate := st.CreateUser(ctx, &dup); !errors.Is(errCreate, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused email, got %v", errCreate)
	}
}

func TestMongoUpdateFormBackfill(t *testing.T) {
	st := newMongoTestStore(t)
	ctx := context.Background()
	user := mongoSeedUser(t, st)
	form := mongoSeedForm(t, st, user.ID, []models.FormField{
		{ID: "f-name", Type: models.FieldText, Label: "Name"},
	})
	response := mongoSeedResponse(t, st, form.ID, map[string]any{"Name": "Ada"})

	form.Fields = append(form.Fields, models.FormField{ID: "f-veg", Type: models.FieldCheckbox, Label: "Vegetarian"})
	if err := st.UpdateForm(ctx, form, true); err != nil {
		t.Fatalf("update form: %v", err)
	}

	got, err := st.GetResponse(ctx, response.ID)
	if err != nil || got == nil {
		t.Fatalf("get response: %v", err)
	}
	if got.Data["Name"] != "Ada" {
		t.Fatalf("expected existing value preserved, got %v", got.Data["Name"])
	}
	if got.Data["Vegetarian"] != false {
		t.Fatalf("expected checkbox back-filled to false, got %v", got.Data["Vegetarian"])
	}
}

func TestMongoDeleteFormCascade(t *testing.T) {
	st := newMongoTestStore(t)
	ctx := context.Background()
	user := mongoSeedUser(t, st)
	form := mongoSeedForm(t, st, user.ID, nil)
	kept := mongoSeedForm(t, st, user.ID, nil)
	mongoSeedResponse(t, st, form.ID, map[string]any{"Name": "Ada"})

	privateUser := &models.PrivateUser{
		ID:              uuid.NewString(),
		OwnerID:         user.ID,
		Name:            "Guest",
		Email:           uuid.NewString() + "@example.com",
		Password:        "hashed",
		AccessibleForms: []string{form.ID, kept.ID},
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := st.CreatePrivateUser(ctx, privateUser); err != nil {
		t.Fatalf("create private user: %v", err)
	}

	if err := st.DeleteForm(ctx, form.ID); err != nil {
		t.Fatalf("delete form: %v", err)
	}

	if got, err := st.GetForm(ctx, form.ID); err != nil || got != nil {
		t.Fatalf("expected form gone, got %+v (%v)", got, err)
	}
	responses, err := st.GetResponsesByFormID(ctx, form.ID)
	if err != nil || len(responses) != 0 {
		t.Fatalf("expected responses gone, got %d (%v)", len(responses), err)
	}
	got, err := st.GetPrivateUser(ctx, privateUser.ID)
	if err != nil || got == nil {
		t.Fatalf("get private user: %v", err)
	}
	if len(got.AccessibleForms) != 1 || got.AccessibleForms[0] != kept.ID {
		t.Fatalf("expected deleted form stripped from grants, got %v", got.AccessibleForms)
	}
}

func TestMongoDeleteUserCascade(t *testing.T) {
	st := newMongoTestStore(t)
	ctx := context.Background()
	user := mongoSeedUser(t, st)
	form := mongoSeedForm(t, st, user.ID, nil)
	mongoSeedResponse(t, st, form.ID, map[string]any{"Name": "Ada"})

	privateUser := &models.PrivateUser{
		ID:              uuid.NewString(),
		OwnerID:         user.ID,
		Name:            "Guest",
		Email:           uuid.NewString() + "@example.com",
		Password:        "hashed",
		AccessibleForms: []string{form.ID},
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := st.CreatePrivateUser(ctx, privateUser); err != nil {
		t.Fatalf("create private user: %v", err)
	}

	if err := st.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if got, err := st.GetUser(ctx, user.ID); err != nil || got != nil {
		t.Fatalf("expected user gone, got %+v (%v)", got, err)
	}
	if got, err := st.GetForm(ctx, form.ID); err != nil || got != nil {
		t.Fatalf("expected form gone, got %+v (%v)", got, err)
	}
	responses, err := st.GetResponsesByFormID(ctx, form.ID)
	if err != nil || len(responses) != 0 {
		t.Fatalf("expected responses gone, got %d (%v)", len(responses), err)
	}
	if got, err := st.GetPrivateUser(ctx, privateUser.ID); err != nil || got != nil {
		t.Fatalf("expected private user gone, got %+v (%v)", got, err)
	}
}
