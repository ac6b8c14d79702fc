package models

import (
	"time"

	"gorm.io/datatypes"
)

// Response is one respondent's submitted answers to a form. Data maps field
// labels to submitted values; the value shape depends on the field type and is
// not validated server-side.
type Response struct {
	ID     string `gorm:"primaryKey;type:text" bson:"_id" json:"id"`
	FormID string `gorm:"type:text;not null;index" bson:"form_id" json:"formId"`

	Data datatypes.JSONMap `bson:"data" json:"data"`

	SubmittedAt time.Time `gorm:"not null" bson:"submitted_at" json:"submittedAt"`
	UpdatedAt   time.Time `gorm:"not null" bson:"updated_at" json:"updatedAt"`
}
