package usertoken

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eventstime/core/internal/database"
	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/pkg/apperr"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.UserModel {
	t.Helper()
	group := models.UserGroupModel{Name: "vendor"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}
	user := models.UserModel{
		FirstName:   "Ana",
		LastName:    "Souza",
		BirthDate:   time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC),
		Email:       "ana@example.com",
		Password:    "irrelevant",
		UserGroupID: group.ID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func TestUpsertCreatesThenReplacesSession(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	store := NewStore(db)

	if err := store.UpsertRefreshToken(user.ID, models.AppClientClient, "token-1"); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.UpsertRefreshToken(user.ID, models.AppClientClient, "token-2"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	db.Model(&models.UserTokenModel{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single session row, got %d", count)
	}

	ut, err := store.FindActiveSession(user.ID, models.AppClientClient)
	if err != nil {
		t.Fatalf("find session: %v", err)
	}
	if ut == nil || ut.RefreshToken == nil || *ut.RefreshToken != "token-2" {
		t.Fatalf("expected token-2 to win, got %+v", ut)
	}
}

func TestSessionsArePartitionedByAppClient(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	store := NewStore(db)

	if err := store.UpsertRefreshToken(user.ID, models.AppClientClient, "mobile"); err != nil {
		t.Fatalf("upsert client: %v", err)
	}
	if err := store.UpsertRefreshToken(user.ID, models.AppClientStand, "stand"); err != nil {
		t.Fatalf("upsert stand: %v", err)
	}

	ok, err := store.IsRefreshTokenValid(user.ID, models.AppClientClient, "mobile")
	if err != nil || !ok {
		t.Fatalf("client token should be valid: ok=%v err=%v", ok, err)
	}
	ok, err = store.IsRefreshTokenValid(user.ID, models.AppClientStand, "mobile")
	if err != nil || ok {
		t.Fatalf("client token must not validate for stand session: ok=%v err=%v", ok, err)
	}
}

func TestRotateRefreshTokenRequiresCurrentToken(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	store := NewStore(db)

	if err := store.UpsertRefreshToken(user.ID, models.AppClientClient, "current"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := store.RotateRefreshToken(user.ID, models.AppClientClient, "current", "next"); err != nil {
		t.Fatalf("rotation with current token must succeed: %v", err)
	}

	// replaying the consumed token loses the race
	err := store.RotateRefreshToken(user.ID, models.AppClientClient, "current", "stolen")
	if !apperr.IsKind(err, apperr.Unauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}

	ok, err := store.IsRefreshTokenValid(user.ID, models.AppClientClient, "next")
	if err != nil || !ok {
		t.Fatalf("rotated token should be the valid one: ok=%v err=%v", ok, err)
	}
}

func TestIsRefreshTokenValidWithoutSession(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	store := NewStore(db)

	ok, err := store.IsRefreshTokenValid(user.ID, models.AppClientClient, "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("token must not validate when no session exists")
	}
}

func TestRevokeKeepsRowAndPushToken(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	store := NewStore(db)

	if err := store.UpsertRefreshToken(user.ID, models.AppClientClient, "tok"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.SetPushToken(user.ID, models.AppClientClient, "fcm-123"); err != nil {
		t.Fatalf("set push token: %v", err)
	}
	if err := store.RevokeRefreshToken(user.ID, models.AppClientClient); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	ut, err := store.FindActiveSession(user.ID, models.AppClientClient)
	if err != nil || ut == nil {
		t.Fatalf("session row should survive revocation: %v", err)
	}
	if ut.RefreshToken != nil {
		t.Fatal("refresh token should be cleared")
	}
	if ut.TokenFcm == nil || *ut.TokenFcm != "fcm-123" {
		t.Fatal("push token should survive revocation")
	}
}

func TestPushTokenRequiresSession(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	store := NewStore(db)

	err := store.SetPushToken(user.ID, models.AppClientClient, "fcm")
	if !apperr.IsKind(err, apperr.SessionNotFound) {
		t.Fatalf("expected USER_TOKEN_NOT_FOUND, got %v", err)
	}
	err = store.ClearPushToken(user.ID, models.AppClientClient)
	if !apperr.IsKind(err, apperr.SessionNotFound) {
		t.Fatalf("expected USER_TOKEN_NOT_FOUND, got %v", err)
	}
}

func TestClearPushToken(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	store := NewStore(db)

	if err := store.UpsertRefreshToken(user.ID, models.AppClientBackoffice, "tok"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.SetPushToken(user.ID, models.AppClientBackoffice, "fcm"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.ClearPushToken(user.ID, models.AppClientBackoffice); err != nil {
		t.Fatalf("clear: %v", err)
	}

	ut, _ := store.FindActiveSession(user.ID, models.AppClientBackoffice)
	if ut == nil || ut.TokenFcm != nil {
		t.Fatalf("push token should be cleared, got %+v", ut)
	}
}
