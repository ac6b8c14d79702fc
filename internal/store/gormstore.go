package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbutil "github.com/formworks/formworks/internal/db"
	"github.com/formworks/formworks/internal/models"
	"gorm.io/gorm"
)

// GormStore is the relational Store implementation (PostgreSQL or SQLite).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a GormStore over an open connection.
func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn}
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return sqlDB.Close()
}

// first runs a single-record query, mapping ErrRecordNotFound to (absent, nil).
func first[T any](ctx context.Context, conn *gorm.DB, query string, args ...any) (*T, error) {
	var row T
	errFind := conn.WithContext(ctx).Where(query, args...).First(&row).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errFind
	}
	return &row, nil
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return first[models.User](ctx, s.db, "id = ?", id)
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](ctx, s.db, "LOWER(email) = LOWER(?)", email)
}

func (s *GormStore) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	return first[models.User](ctx, s.db, "verification_token = ?", token)
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	errCreate := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
	}
	return errCreate
}

func (s *GormStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	return s.db.WithContext(ctx).Save(user).Error
}

func (s *GormStore) DeleteUser(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var formIDs []string
		if errFind := tx.Model(&models.Form{}).Where("user_id = ?", id).Pluck("id", &formIDs).Error; errFind != nil {
			return errFind
		}
		if len(formIDs) > 0 {
			if errDel := tx.Where("form_id IN ?", formIDs).Delete(&models.Response{}).Error; errDel != nil {
				return errDel
			}
		}
		if errDel := tx.Where("user_id = ?", id).Delete(&models.Form{}).Error; errDel != nil {
			return errDel
		}
		if errDel := tx.Where("owner_id = ?", id).Delete(&models.PrivateUser{}).Error; errDel != nil {
			return errDel
		}
		return tx.Where("id = ?", id).Delete(&models.User{}).Error
	})
}

func (s *GormStore) GetAllUsers(ctx context.Context, search string) ([]models.User, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		pattern := dbutil.NormalizeLikePattern(s.db, "%"+search+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(s.db, "email")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(s.db, "first_name")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(s.db, "last_name"),
			pattern, pattern, pattern,
		)
	}
	var rows []models.User
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

func (s *GormStore) UpdateUserMetrics(ctx context.Context, id string) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil || user == nil {
		return user, err
	}
	var formIDs []string
	if errFind := s.db.WithContext(ctx).Model(&models.Form{}).Where("user_id = ?", id).Pluck("id", &formIDs).Error; errFind != nil {
		return nil, errFind
	}
	responses, err := s.GetResponseCountByFormIDs(ctx, formIDs)
	if err != nil {
		return nil, err
	}
	user.TotalForms = int64(len(formIDs))
	user.TotalResponses = responses
	if errSave := s.UpdateUser(ctx, user); errSave != nil {
		return nil, errSave
	}
	return user, nil
}

func (s *GormStore) GetForm(ctx context.Context, id string) (*models.Form, error) {
	return first[models.Form](ctx, s.db, "id = ?", id)
}

func (s *GormStore) GetFormsByUserID(ctx context.Context, userID string) ([]models.Form, error) {
	var rows []models.Form
	errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

func (s *GormStore) CountFormsByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	errCount := s.db.WithContext(ctx).Model(&models.Form{}).Where("user_id = ?", userID).Count(&count).Error
	return count, errCount
}

func (s *GormStore) CreateForm(ctx context.Context, form *models.Form) error {
	return s.db.WithContext(ctx).Create(form).Error
}

func (s *GormStore) UpdateForm(ctx context.Context, form *models.Form, fieldsChanged bool) error {
	form.UpdatedAt = time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errSave := tx.Save(form).Error; errSave != nil {
			return errSave
		}
		if !fieldsChanged {
			return nil
		}
		var responses []models.Response
		if errFind := tx.Where("form_id = ?", form.ID).Find(&responses).Error; errFind != nil {
			return errFind
		}
		for i := range responses {
			if responses[i].Data == nil {
				responses[i].Data = map[string]any{}
			}
			if !applyFieldDefaults(form.Fields, responses[i].Data) {
				continue
			}
			responses[i].UpdatedAt = time.Now().UTC()
			if errSave := tx.Save(&responses[i]).Error; errSave != nil {
				return errSave
			}
		}
		return nil
	})
}

func (s *GormStore) DeleteForm(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errDel := tx.Where("form_id = ?", id).Delete(&models.Response{}).Error; errDel != nil {
			return errDel
		}
		// Drop references from private users' accessible-form sets.
		var privateUsers []models.PrivateUser
		errFind := tx.Where(
			dbutil.JSONArrayContainsExpr(tx, "accessible_forms"),
			dbutil.JSONArrayContainsValue(tx, id),
		).Find(&privateUsers).Error
		if errFind != nil {
			return errFind
		}
		for i := range privateUsers {
			privateUsers[i].AccessibleForms = removeString(privateUsers[i].AccessibleForms, id)
			privateUsers[i].UpdatedAt = time.Now().UTC()
			if errSave := tx.Save(&privateUsers[i]).Error; errSave != nil {
				return errSave
			}
		}
		return tx.Where("id = ?", id).Delete(&models.Form{}).Error
	})
}

func (s *GormStore) CreateResponse(ctx context.Context, response *models.Response) error {
	return s.db.WithContext(ctx).Create(response).Error
}

func (s *GormStore) GetResponse(ctx context.Context, id string) (*models.Response, error) {
	return first[models.Response](ctx, s.db, "id = ?", id)
}

func (s *GormStore) GetResponsesByFormID(ctx context.Context, formID string) ([]models.Response, error) {
	var rows []models.Response
	errFind := s.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("submitted_at DESC").
		Find(&rows).Error
	if errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

func (s *GormStore) UpdateResponse(ctx context.Context, response *models.Response) error {
	response.UpdatedAt = time.Now().UTC()
	return s.db.WithContext(ctx).Save(response).Error
}

func (s *GormStore) DeleteResponse(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Response{}).Error
}

func (s *GormStore) GetResponseCount(ctx context.Context, formID string) (int64, error) {
	var count int64
	errCount := s.db.WithContext(ctx).Model(&models.Response{}).Where("form_id = ?", formID).Count(&count).Error
	return count, errCount
}

func (s *GormStore) GetResponseCountByFormIDs(ctx context.Context, formIDs []string) (int64, error) {
	if len(formIDs) == 0 {
		return 0, nil
	}
	var count int64
	errCount := s.db.WithContext(ctx).Model(&models.Response{}).Where("form_id IN ?", formIDs).Count(&count).Error
	return count, errCount
}

func (s *GormStore) CreatePrivateUser(ctx context.Context, privateUser *models.PrivateUser) error {
	return s.db.WithContext(ctx).Create(privateUser).Error
}

func (s *GormStore) GetPrivateUser(ctx context.Context, id string) (*models.PrivateUser, error) {
	return first[models.PrivateUser](ctx, s.db, "id = ?", id)
}

func (s *GormStore) GetPrivateUserByEmail(ctx context.Context, email string) (*models.PrivateUser, error) {
	return first[models.PrivateUser](ctx, s.db, "LOWER(email) = LOWER(?)", email)
}

func (s *GormStore) GetPrivateUsersByOwnerID(ctx context.Context, ownerID string) ([]models.PrivateUser, error) {
	var rows []models.PrivateUser
	errFind := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	if errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

func (s *GormStore) UpdatePrivateUser(ctx context.Context, privateUser *models.PrivateUser) error {
	privateUser.UpdatedAt = time.Now().UTC()
	return s.db.WithContext(ctx).Save(privateUser).Error
}

func (s *GormStore) DeletePrivateUser(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PrivateUser{}).Error
}

// removeString returns values without any occurrence of v.
func removeString(values []string, v string) []string {
	out := values[:0]
	for _, s := range values {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
