package models

import "time"

// AppClient identifies which client application a session belongs to.
// Sessions are partitioned per (user, app client).
type AppClient string

const (
	AppClientClient     AppClient = "CLIENT"
	AppClientStand      AppClient = "STAND"
	AppClientBackoffice AppClient = "BACKOFFICE"
)

// Valid reports whether c is one of the known client applications.
func (c AppClient) Valid() bool {
	switch c {
	case AppClientClient, AppClientStand, AppClientBackoffice:
		return true
	}
	return false
}

// UserTokenModel is the single active session record per (user, app client):
// the currently valid refresh token plus the device push-notification token.
// Rows are upserted on login and rotated on refresh; revocation clears the
// refresh token but keeps the row, so there is no soft delete here.
type UserTokenModel struct {
	ID           uint       `json:"id"            gorm:"primaryKey"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	UserID       uint       `json:"user_id"       gorm:"uniqueIndex:idx_user_app;not null"`
	AppClient    AppClient  `json:"app_client"    gorm:"uniqueIndex:idx_user_app;type:varchar(16);not null"`
	RefreshToken *string    `json:"-"             gorm:"type:text"`
	TokenFcm     *string    `json:"token_fcm"     gorm:"type:text"`
	User         *UserModel `json:"-"             gorm:"foreignKey:UserID"`
}

func (UserTokenModel) TableName() string { return "user_tokens" }
