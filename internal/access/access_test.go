package access

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/formworks/formworks/internal/config"
	"github.com/formworks/formworks/internal/models"
	"github.com/formworks/formworks/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "access-test.db")
	st, err := store.Open(context.Background(), config.StoreConfig{DatabaseDSN: dsn})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func seedForm(t *testing.T, st store.Store, id, userID string) {
	t.Helper()
	now := time.Now().UTC()
	form := &models.Form{
		ID: id, UserID: userID, Title: "T",
		Status: models.FormStatusActive, Visibility: models.VisibilityPublic,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := st.CreateForm(context.Background(), form); err != nil {
		t.Fatalf("create form: %v", err)
	}
}

func TestRequireFormOwner_NotFoundBeforeForbidden(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedForm(t, st, "f1", "owner")

	if _, err := RequireFormOwner(ctx, st, "missing", "anyone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing form, got %v", err)
	}
	if _, err := RequireFormOwner(ctx, st, "f1", "intruder"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	form, err := RequireFormOwner(ctx, st, "f1", "owner")
	if err != nil || form == nil {
		t.Fatalf("expected owner to pass, got %v", err)
	}
}

func TestCanCreateForm_Quota(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := &models.User{ID: "u1", Status: models.UserStatusActive, FormLimit: 1}
	seedForm(t, st, "f1", "u1")

	if err := CanCreateForm(ctx, st, user); !errors.Is(err, ErrFormLimit) {
		t.Fatalf("expected ErrFormLimit at quota, got %v", err)
	}

	// Zero means unlimited.
	user.FormLimit = 0
	if err := CanCreateForm(ctx, st, user); err != nil {
		t.Fatalf("expected unlimited account to pass, got %v", err)
	}
}

func TestCanCreateForm_Suspended(t *testing.T) {
	st := newTestStore(t)
	user := &models.User{ID: "u1", Status: models.UserStatusSuspended}

	if err := CanCreateForm(context.Background(), st, user); !errors.Is(err, ErrSuspended) {
		t.Fatalf("expected ErrSuspended, got %v", err)
	}
	if err := CanMutateForms(user); !errors.Is(err, ErrSuspended) {
		t.Fatalf("expected ErrSuspended for mutation, got %v", err)
	}
}

func TestCanViewPrivateForm(t *testing.T) {
	form := &models.Form{ID: "f1", UserID: "owner", Visibility: models.VisibilityPrivate}
	granted := &models.PrivateUser{ID: "p1", OwnerID: "owner", AccessibleForms: []string{"f1"}}
	ungranted := &models.PrivateUser{ID: "p2", OwnerID: "owner", AccessibleForms: []string{"other"}}
	foreign := &models.PrivateUser{ID: "p3", OwnerID: "someone-else", AccessibleForms: []string{"f1"}}

	if !CanViewPrivateForm(granted, form) {
		t.Fatalf("expected granted private user to view")
	}
	if CanViewPrivateForm(ungranted, form) {
		t.Fatalf("expected ungranted private user to be refused")
	}
	if CanViewPrivateForm(foreign, form) {
		t.Fatalf("expected cross-owner grant to be refused")
	}
	if CanViewPrivateForm(nil, form) {
		t.Fatalf("expected nil private user to be refused")
	}
}
