// Package access enforces ownership, suspension, and quota policy server-side.
package access

import (
	"context"
	"errors"

	"github.com/formworks/formworks/internal/models"
	"github.com/formworks/formworks/internal/store"
)

// Policy decision errors, mapped to HTTP status codes at the API boundary.
var (
	// ErrNotFound means the target resource does not exist. It is always
	// checked before ownership so that ownership is never implicitly
	// confirmed or denied for missing resources.
	ErrNotFound = errors.New("access: not found")
	// ErrForbidden means the requester is authenticated but not entitled.
	ErrForbidden = errors.New("access: forbidden")
	// ErrSuspended means the account is blocked from form mutations.
	ErrSuspended = errors.New("access: account suspended")
	// ErrFormLimit means the per-user form-count quota is exhausted.
	ErrFormLimit = errors.New("access: form limit reached")
)

// RequireFormOwner loads a form and verifies the requester owns it.
func RequireFormOwner(ctx context.Context, st store.Store, formID, userID string) (*models.Form, error) {
	form, err := st.GetForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrNotFound
	}
	if form.UserID != userID {
		return nil, ErrForbidden
	}
	return form, nil
}

// RequireResponseOwner loads a response and verifies the requester owns its
// parent form.
func RequireResponseOwner(ctx context.Context, st store.Store, responseID, userID string) (*models.Response, *models.Form, error) {
	response, err := st.GetResponse(ctx, responseID)
	if err != nil {
		return nil, nil, err
	}
	if response == nil {
		return nil, nil, ErrNotFound
	}
	form, err := RequireFormOwner(ctx, st, response.FormID, userID)
	if err != nil {
		return nil, nil, err
	}
	return response, form, nil
}

// RequirePrivateUserOwner loads a private user and verifies ownership.
func RequirePrivateUserOwner(ctx context.Context, st store.Store, privateUserID, userID string) (*models.PrivateUser, error) {
	privateUser, err := st.GetPrivateUser(ctx, privateUserID)
	if err != nil {
		return nil, err
	}
	if privateUser == nil {
		return nil, ErrNotFound
	}
	if privateUser.OwnerID != userID {
		return nil, ErrForbidden
	}
	return privateUser, nil
}

// CanCreateForm checks the suspension gate and the per-user form-count quota.
// The quota blocks new-form creation only; edits and deletes of existing forms
// are never quota-gated.
func CanCreateForm(ctx context.Context, st store.Store, user *models.User) error {
	if user.Suspended() {
		return ErrSuspended
	}
	if user.FormLimit <= 0 {
		return nil
	}
	count, err := st.CountFormsByUserID(ctx, user.ID)
	if err != nil {
		return err
	}
	if count >= int64(user.FormLimit) {
		return ErrFormLimit
	}
	return nil
}

// CanMutateForms checks the suspension gate for update/delete operations.
func CanMutateForms(user *models.User) error {
	if user.Suspended() {
		return ErrSuspended
	}
	return nil
}

// CanViewPrivateForm reports whether a private respondent may view the form.
func CanViewPrivateForm(privateUser *models.PrivateUser, form *models.Form) bool {
	if privateUser == nil || form == nil {
		return false
	}
	return privateUser.OwnerID == form.UserID && privateUser.CanAccess(form.ID)
}
