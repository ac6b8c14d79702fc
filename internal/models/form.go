package models

import (
	"time"

	"gorm.io/datatypes"
)

// Form status values.
const (
	FormStatusActive   = "Active"
	FormStatusDraft    = "Draft"
	FormStatusArchived = "Archived"
)

// Form visibility values.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Confirmation display modes shown to a respondent after submitting.
const (
	ConfirmationTable     = "table"
	ConfirmationParagraph = "paragraph"
)

// OutputFormatThankYou is the default output format for new forms.
const OutputFormatThankYou = "thank_you"

// Field type enum for FormField.Type.
const (
	FieldText     = "text"
	FieldNumber   = "number"
	FieldEmail    = "email"
	FieldTextarea = "textarea"
	FieldCheckbox = "checkbox"
	FieldSelect   = "select"
	FieldRadio    = "radio"
	FieldDate     = "date"
)

// FormField is one input in a form's ordered field schema. IDs are unique
// within the owning form.
type FormField struct {
	ID          string   `bson:"id" json:"id"`
	Type        string   `bson:"type" json:"type"`
	Label       string   `bson:"label" json:"label"`
	Placeholder string   `bson:"placeholder,omitempty" json:"placeholder,omitempty"`
	Required    bool     `bson:"required" json:"required"`
	Options     []string `bson:"options,omitempty" json:"options,omitempty"` // select/radio only
}

// DefaultValue returns the back-fill value used when this field is added to a
// form that already has responses.
func (f FormField) DefaultValue() any {
	if f.Type == FieldCheckbox {
		return false
	}
	return ""
}

// Form is a user-authored field schema plus presentation and export
// configuration. UserID is immutable after creation.
type Form struct {
	ID     string `gorm:"primaryKey;type:text" bson:"_id" json:"id"`
	UserID string `gorm:"type:text;not null;index" bson:"user_id" json:"userId"`

	Title      string `gorm:"type:text;not null" bson:"title" json:"title"`
	Status     string `gorm:"type:text;not null;default:Active" bson:"status" json:"status"`
	Visibility string `gorm:"type:text;not null;default:public" bson:"visibility" json:"visibility"`

	Fields        []FormField `gorm:"serializer:json;type:text" bson:"fields" json:"fields"`
	OutputFormats []string    `gorm:"serializer:json;type:text" bson:"output_formats" json:"outputFormats"`

	ConfirmationStyle string            `gorm:"type:text;not null;default:table" bson:"confirmation_style" json:"confirmationStyle"`
	ConfirmationText  string            `gorm:"type:text" bson:"confirmation_text,omitempty" json:"confirmationText,omitempty"`
	TableConfig       datatypes.JSONMap `bson:"table_config,omitempty" json:"tableConfig,omitempty"`
	GridConfig        datatypes.JSONMap `bson:"grid_config,omitempty" json:"gridConfig,omitempty"`
	WhatsappFormat    string            `gorm:"type:text" bson:"whatsapp_format,omitempty" json:"whatsappFormat,omitempty"`

	AllowEditing bool `gorm:"not null;default:true" bson:"allow_editing" json:"allowEditing"`

	CreatedAt time.Time `gorm:"not null" bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" bson:"updated_at" json:"updatedAt"`
}

// ValidFieldType reports whether t is a recognized field type.
func ValidFieldType(t string) bool {
	switch t {
	case FieldText, FieldNumber, FieldEmail, FieldTextarea, FieldCheckbox, FieldSelect, FieldRadio, FieldDate:
		return true
	}
	return false
}
