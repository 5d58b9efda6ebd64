package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eventstime/core/internal/database"
	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/modules/user"
	"github.com/eventstime/core/internal/modules/usertoken"
	"github.com/eventstime/core/internal/pkg/apperr"
	"github.com/eventstime/core/internal/pkg/jwt"
)

const testPassword = "s3cret-pass"

func newTestService(t *testing.T) (*Service, *usertoken.Store, *models.UserModel) {
	svc, tokens, u, _ := newTestServiceDB(t)
	return svc, tokens, u
}

func newTestServiceDB(t *testing.T) (*Service, *usertoken.Store, *models.UserModel, *gorm.DB) {
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

	group := models.UserGroupModel{Name: "vendor"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}

	users := user.NewService(db)
	u, err := users.Create(&user.CreateUserDTO{
		FirstName:   "Ana",
		LastName:    "Souza",
		BirthDate:   "1990-05-12",
		Email:       "ana@example.com",
		Password:    testPassword,
		UserGroupID: group.ID,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	tokens := usertoken.NewStore(db)
	codec := jwt.NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)
	return NewService(users, tokens, codec), tokens, u, db
}

func TestLoginIssuesPersistedPair(t *testing.T) {
	svc, tokens, u := newTestService(t)

	pair, err := svc.Login(u.Email, testPassword, models.AppClientClient)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	ok, err := tokens.IsRefreshTokenValid(u.ID, models.AppClientClient, pair.RefreshToken)
	if err != nil || !ok {
		t.Fatalf("issued refresh token should be the stored one: ok=%v err=%v", ok, err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, u, db := newTestServiceDB(t)

	_, err := svc.Login(u.Email, "wrong", models.AppClientClient)
	if !apperr.IsKind(err, apperr.LoginFailed) {
		t.Fatalf("expected LOGIN_FAILED, got %v", err)
	}

	var count int64
	db.Model(&models.UserTokenModel{}).Count(&count)
	if count != 0 {
		t.Fatalf("failed login must not write a session, found %d rows", count)
	}
}

func TestLoginStoreFailureIsUnauthorized(t *testing.T) {
	svc, _, u, db := newTestServiceDB(t)

	// Persisting the session cannot work without its table; the failure
	// must stay a domain error instead of leaking a database error.
	if err := db.Migrator().DropTable(&models.UserTokenModel{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	_, err := svc.Login(u.Email, testPassword, models.AppClientClient)
	if !apperr.IsKind(err, apperr.Unauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login("nobody@example.com", testPassword, models.AppClientClient)
	if !apperr.IsKind(err, apperr.UserNotFound) {
		t.Fatalf("expected USER_NOT_FOUND, got %v", err)
	}
}

func TestLoginRejectsUnknownAppClient(t *testing.T) {
	svc, _, u := newTestService(t)

	_, err := svc.Login(u.Email, testPassword, models.AppClient("WATCH"))
	if !apperr.IsKind(err, apperr.LoginFailed) {
		t.Fatalf("expected LOGIN_FAILED, got %v", err)
	}
}

func TestLoginReplacesPreviousSession(t *testing.T) {
	svc, tokens, u := newTestService(t)

	first, err := svc.Login(u.Email, testPassword, models.AppClientClient)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.Login(u.Email, testPassword, models.AppClientClient)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	ok, _ := tokens.IsRefreshTokenValid(u.ID, models.AppClientClient, first.RefreshToken)
	if ok {
		t.Fatal("first session's refresh token must be invalidated by the second login")
	}
	ok, _ = tokens.IsRefreshTokenValid(u.ID, models.AppClientClient, second.RefreshToken)
	if !ok {
		t.Fatal("second session's refresh token should be valid")
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, tokens, u := newTestService(t)

	pair, err := svc.Login(u.Email, testPassword, models.AppClientStand)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next, err := svc.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh must issue a new refresh token")
	}

	ok, _ := tokens.IsRefreshTokenValid(u.ID, models.AppClientStand, pair.RefreshToken)
	if ok {
		t.Fatal("consumed refresh token must be invalid")
	}
	ok, _ = tokens.IsRefreshTokenValid(u.ID, models.AppClientStand, next.RefreshToken)
	if !ok {
		t.Fatal("rotated refresh token should be valid")
	}
}

func TestRefreshRejectsReplayedToken(t *testing.T) {
	svc, _, u := newTestService(t)

	pair, err := svc.Login(u.Email, testPassword, models.AppClientClient)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Refresh(pair.RefreshToken); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	_, err = svc.Refresh(pair.RefreshToken)
	if !apperr.IsKind(err, apperr.Unauthorized) {
		t.Fatalf("replayed token must get UNAUTHORIZED, got %v", err)
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Refresh("not-a-jwt")
	if !apperr.IsKind(err, apperr.Unauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	svc, _, u := newTestService(t)

	// well-formed, correctly signed, already expired
	expiredCodec := jwt.NewCodec("access-secret", "refresh-secret", time.Minute, -time.Hour)
	stale, err := expiredCodec.IssueRefresh(u.ID, u.Email, models.AppClientClient)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = svc.Refresh(stale)
	if !apperr.IsKind(err, apperr.Unauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestRefreshRejectsRevokedSession(t *testing.T) {
	svc, tokens, u := newTestService(t)

	pair, err := svc.Login(u.Email, testPassword, models.AppClientClient)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := tokens.RevokeRefreshToken(u.ID, models.AppClientClient); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	_, err = svc.Refresh(pair.RefreshToken)
	if !apperr.IsKind(err, apperr.Unauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestSessionsAreIndependentPerAppClient(t *testing.T) {
	svc, tokens, u := newTestService(t)

	mobile, err := svc.Login(u.Email, testPassword, models.AppClientClient)
	if err != nil {
		t.Fatalf("mobile login: %v", err)
	}
	stand, err := svc.Login(u.Email, testPassword, models.AppClientStand)
	if err != nil {
		t.Fatalf("stand login: %v", err)
	}

	if _, err := svc.Refresh(mobile.RefreshToken); err != nil {
		t.Fatalf("mobile refresh: %v", err)
	}

	ok, _ := tokens.IsRefreshTokenValid(u.ID, models.AppClientStand, stand.RefreshToken)
	if !ok {
		t.Fatal("rotating the mobile session must not disturb the stand session")
	}
}

func TestRegisterRespondsWithEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService(t)

	router := gin.New()
	api := router.Group("/api")
	NewHandler(svc).RegisterRoutes(api, func(c *gin.Context) { c.Next() })

	body := `{"first_name":"Bia","last_name":"Lima","birth_date":"1992-01-30",` +
		`"email":"bia@example.com","password":"another-pass","user_group_id":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Fatalf("register must answer with an empty body, got %q", w.Body.String())
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, u := newTestService(t)

	err := svc.Register(&user.CreateUserDTO{
		FirstName:   "Bia",
		LastName:    "Lima",
		BirthDate:   "1992-01-30",
		Email:       u.Email,
		Password:    "another-pass",
		UserGroupID: u.UserGroupID,
	})
	if !apperr.IsKind(err, apperr.EmailAlreadyExist) {
		t.Fatalf("expected EMAIL_ALREADY_EXIST, got %v", err)
	}
}
