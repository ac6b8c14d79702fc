package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/formworks/formworks/internal/config"
	"github.com/formworks/formworks/internal/db"
	"github.com/formworks/formworks/internal/models"
	log "github.com/sirupsen/logrus"
)

// ErrDuplicate reports a uniqueness violation on create. Concurrent signups
// for one email race past the pre-check; the unique index surfaces here.
var ErrDuplicate = errors.New("store: duplicate record")

// Store is the capability set over the backing store. Exactly one concrete
// implementation is active per process, selected once at startup. Lookups for
// missing records return (nil, nil); errors indicate connectivity or query
// failures only.
type Store interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	// DeleteUser removes the user's forms, the responses on those forms, the
	// user's private users, then the user record, in that dependency order.
	DeleteUser(ctx context.Context, id string) error
	GetAllUsers(ctx context.Context, search string) ([]models.User, error)
	// UpdateUserMetrics recomputes and persists totalForms/totalResponses by
	// counting current records. Invoked opportunistically, e.g. on login.
	UpdateUserMetrics(ctx context.Context, id string) (*models.User, error)

	GetForm(ctx context.Context, id string) (*models.Form, error)
	GetFormsByUserID(ctx context.Context, userID string) ([]models.Form, error)
	CountFormsByUserID(ctx context.Context, userID string) (int64, error)
	CreateForm(ctx context.Context, form *models.Form) error
	// UpdateForm persists the form. When fieldsChanged is true, every existing
	// response is back-filled with type-appropriate defaults for fields absent
	// from its data map; existing keys are never overwritten or removed.
	UpdateForm(ctx context.Context, form *models.Form, fieldsChanged bool) error
	// DeleteForm removes the form, its responses, and any references to it in
	// private users' accessible-form sets.
	DeleteForm(ctx context.Context, id string) error

	CreateResponse(ctx context.Context, response *models.Response) error
	GetResponse(ctx context.Context, id string) (*models.Response, error)
	// GetResponsesByFormID returns responses newest-first.
	GetResponsesByFormID(ctx context.Context, formID string) ([]models.Response, error)
	UpdateResponse(ctx context.Context, response *models.Response) error
	DeleteResponse(ctx context.Context, id string) error
	GetResponseCount(ctx context.Context, formID string) (int64, error)
	GetResponseCountByFormIDs(ctx context.Context, formIDs []string) (int64, error)

	CreatePrivateUser(ctx context.Context, privateUser *models.PrivateUser) error
	GetPrivateUser(ctx context.Context, id string) (*models.PrivateUser, error)
	GetPrivateUserByEmail(ctx context.Context, email string) (*models.PrivateUser, error)
	GetPrivateUsersByOwnerID(ctx context.Context, ownerID string) ([]models.PrivateUser, error)
	UpdatePrivateUser(ctx context.Context, privateUser *models.PrivateUser) error
	DeletePrivateUser(ctx context.Context, id string) error
}

// Open selects and connects the backing store. A present Mongo URI selects the
// document store; otherwise the relational store is opened from the DSN. The
// choice is made once and never switched at runtime.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	if cfg.MongoURI != "" {
		log.Info("store: using document store")
		return OpenMongo(ctx, cfg.MongoURI)
	}
	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("store: no backing store configured (set %s or %s)", config.EnvMongoURI, config.EnvDatabaseDSN)
	}
	log.Info("store: using relational store")
	conn, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return nil, errMigrate
	}
	return NewGormStore(conn), nil
}

// dataKey returns the key a field uses in a response's data map. Submissions
// key values by field label, falling back to the field ID for unlabeled fields.
func dataKey(field models.FormField) string {
	if field.Label != "" {
		return field.Label
	}
	return field.ID
}

// applyFieldDefaults back-fills defaults for schema fields absent from the
// data map. It reports whether the map was modified.
func applyFieldDefaults(fields []models.FormField, data map[string]any) bool {
	changed := false
	for _, field := range fields {
		key := dataKey(field)
		if key == "" {
			continue
		}
		if _, ok := data[key]; ok {
			continue
		}
		data[key] = field.DefaultValue()
		changed = true
	}
	return changed
}
