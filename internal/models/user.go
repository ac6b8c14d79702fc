package models

import "time"

// User account status values.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// User represents a form-owner account stored in the database.
type User struct {
	ID string `gorm:"primaryKey;type:text" bson:"_id" json:"id"` // Application-generated UUID.

	Email     string `gorm:"type:text;not null;uniqueIndex" bson:"email" json:"email"`
	FirstName string `gorm:"type:text" bson:"first_name" json:"firstName"`
	LastName  string `gorm:"type:text" bson:"last_name" json:"lastName"`
	Phone     string `gorm:"type:text" bson:"phone" json:"phone"`
	Company   string `gorm:"type:text" bson:"company" json:"company"`
	Photo     string `gorm:"type:text" bson:"photo" json:"photo"`

	Password string `gorm:"type:text;not null" bson:"password" json:"-"` // Hashed password.

	Status  string `gorm:"type:text;not null;default:active" bson:"status" json:"status"`
	IsAdmin bool   `gorm:"not null;default:false" bson:"is_admin" json:"isAdmin"`

	EmailVerified           bool       `gorm:"not null;default:false" bson:"email_verified" json:"emailVerified"`
	VerificationToken       string     `gorm:"type:text;index" bson:"verification_token,omitempty" json:"-"`
	VerificationTokenExpiry *time.Time `bson:"verification_token_expiry,omitempty" json:"-"`

	ResetOTP         string     `gorm:"type:text" bson:"reset_otp,omitempty" json:"-"`
	ResetOTPExpiry   *time.Time `bson:"reset_otp_expiry,omitempty" json:"-"`
	ResetToken       string     `gorm:"type:text" bson:"reset_token,omitempty" json:"-"`
	ResetTokenExpiry *time.Time `bson:"reset_token_expiry,omitempty" json:"-"`

	TOTPSecret string `gorm:"type:text" bson:"totp_secret,omitempty" json:"-"` // TOTP secret for optional MFA.

	// Derived metrics, recomputed opportunistically on login. Callers must not
	// assume they are fresher than the last metric refresh.
	TotalForms     int64 `gorm:"not null;default:0" bson:"total_forms" json:"totalForms"`
	TotalResponses int64 `gorm:"not null;default:0" bson:"total_responses" json:"totalResponses"`

	FormLimit    int   `gorm:"not null;default:0" bson:"form_limit" json:"formLimit"`       // 0 means unlimited.
	StorageLimit int64 `gorm:"not null;default:0" bson:"storage_limit" json:"storageLimit"` // Advisory, bytes.

	CreatedAt time.Time `gorm:"not null" bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" bson:"updated_at" json:"updatedAt"`
}

// Suspended reports whether the account is blocked from form mutations.
func (u *User) Suspended() bool {
	return u.Status == UserStatusSuspended
}
