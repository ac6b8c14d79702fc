package models

import "time"

// PrivateUser is a form-owner-managed credential that grants a named external
// respondent access to specific private forms belonging to that owner.
type PrivateUser struct {
	ID      string `gorm:"primaryKey;type:text" bson:"_id" json:"id"`
	OwnerID string `gorm:"type:text;not null;index" bson:"owner_id" json:"ownerId"`

	Name     string `gorm:"type:text;not null" bson:"name" json:"name"`
	Email    string `gorm:"type:text;not null;index" bson:"email" json:"email"`
	Password string `gorm:"type:text;not null" bson:"password" json:"-"` // Hashed password.

	AccessibleForms []string `gorm:"serializer:json;type:jsonb" bson:"accessible_forms" json:"accessibleForms"`

	CreatedAt time.Time `gorm:"not null" bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" bson:"updated_at" json:"updatedAt"`
}

// CanAccess reports whether the private user may view the given form.
func (p *PrivateUser) CanAccess(formID string) bool {
	for _, id := range p.AccessibleForms {
		if id == formID {
			return true
		}
	}
	return false
}
