// Package usertoken persists the single active session per (user, app
// client): the current refresh token and the device push token.
package usertoken

import (
	"crypto/subtle"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/pkg/apperr"
)

type Store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// FindActiveSession returns the session row for (userID, appClient), or nil
// when the user never logged in from that client.
func (s *Store) FindActiveSession(userID uint, appClient models.AppClient) (*models.UserTokenModel, error) {
	var ut models.UserTokenModel
	err := s.db.Where("user_id = ? AND app_client = ?", userID, appClient).First(&ut).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ut, nil
}

// UpsertRefreshToken installs refreshToken as the session token for
// (userID, appClient), creating the row on first login. A login from the
// same client replaces the previous session unconditionally.
func (s *Store) UpsertRefreshToken(userID uint, appClient models.AppClient, refreshToken string) error {
	ut := models.UserTokenModel{
		UserID:       userID,
		AppClient:    appClient,
		RefreshToken: &refreshToken,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "app_client"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"refresh_token": refreshToken}),
	}).Create(&ut).Error
}

// RotateRefreshToken atomically replaces oldToken with newToken for the
// session. The conditional update makes concurrent refreshes race safely:
// only one caller matches the stored token, every other caller sees zero
// rows updated and gets Unauthorized.
func (s *Store) RotateRefreshToken(userID uint, appClient models.AppClient, oldToken, newToken string) error {
	res := s.db.Model(&models.UserTokenModel{}).
		Where("user_id = ? AND app_client = ? AND refresh_token = ?", userID, appClient, oldToken).
		Update("refresh_token", newToken)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.Unauthorized)
	}
	return nil
}

// IsRefreshTokenValid reports whether token matches the stored refresh token
// for the session. The comparison is constant time.
func (s *Store) IsRefreshTokenValid(userID uint, appClient models.AppClient, token string) (bool, error) {
	ut, err := s.FindActiveSession(userID, appClient)
	if err != nil {
		return false, err
	}
	if ut == nil || ut.RefreshToken == nil {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(*ut.RefreshToken), []byte(token)) == 1, nil
}

// RevokeRefreshToken clears the stored refresh token but keeps the row, so
// the push token survives a logout.
func (s *Store) RevokeRefreshToken(userID uint, appClient models.AppClient) error {
	return s.db.Model(&models.UserTokenModel{}).
		Where("user_id = ? AND app_client = ?", userID, appClient).
		Update("refresh_token", nil).Error
}

// SetPushToken stores the FCM device token on an existing session.
func (s *Store) SetPushToken(userID uint, appClient models.AppClient, tokenFcm string) error {
	return s.updatePushToken(userID, appClient, &tokenFcm)
}

// ClearPushToken removes the FCM device token from an existing session.
func (s *Store) ClearPushToken(userID uint, appClient models.AppClient) error {
	return s.updatePushToken(userID, appClient, nil)
}

func (s *Store) updatePushToken(userID uint, appClient models.AppClient, tokenFcm *string) error {
	ut, err := s.FindActiveSession(userID, appClient)
	if err != nil {
		return err
	}
	if ut == nil {
		return apperr.New(apperr.SessionNotFound)
	}
	return s.db.Model(ut).Update("token_fcm", tokenFcm).Error
}
