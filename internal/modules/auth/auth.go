// Package auth implements login, token refresh and registration on top of
// the user directory and the per-device session store.
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventstime/core/internal/middleware"
	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/modules/user"
	"github.com/eventstime/core/internal/modules/usertoken"
	"github.com/eventstime/core/internal/pkg/apperr"
	"github.com/eventstime/core/internal/pkg/hash"
	"github.com/eventstime/core/internal/pkg/jwt"
	"github.com/eventstime/core/internal/pkg/response"
)

type LoginDTO struct {
	Email     string `json:"email"      binding:"required,email"`
	Password  string `json:"password"   binding:"required"`
	AppClient string `json:"app_client" binding:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Service struct {
	users  *user.Service
	tokens *usertoken.Store
	codec  *jwt.Codec
}

func NewService(users *user.Service, tokens *usertoken.Store, codec *jwt.Codec) *Service {
	return &Service{users: users, tokens: tokens, codec: codec}
}

// Login authenticates the credentials and installs a fresh session for
// (user, appClient). A second login from the same client replaces the
// previous session.
func (s *Service) Login(email, password string, appClient models.AppClient) (*TokenPair, error) {
	if !appClient.Valid() {
		return nil, apperr.New(apperr.LoginFailed)
	}

	u, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if !hash.VerifyPassword(password, u.Password) {
		return nil, apperr.New(apperr.LoginFailed)
	}

	return s.issuePair(u, appClient, "")
}

// Refresh rotates the session's refresh token and returns a new pair. Any
// failure surfaces as Unauthorized so the response never explains which
// check rejected the token.
func (s *Service) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, apperr.New(apperr.Unauthorized)
	}

	u, err := s.users.FindByID(claims.UserID)
	if err != nil {
		return nil, apperr.New(apperr.Unauthorized)
	}

	pair, err := s.issuePair(u, claims.AppClient, refreshToken)
	if err != nil {
		return nil, apperr.New(apperr.Unauthorized)
	}
	return pair, nil
}

// Register creates a new account. The response body stays empty; the client
// logs in afterwards.
func (s *Service) Register(dto *user.CreateUserDTO) error {
	_, err := s.users.Create(dto)
	return err
}

// Logged returns the profile of the authenticated principal.
func (s *Service) Logged(userID uint) (*models.UserModel, error) {
	return s.users.FindByID(userID)
}

// issuePair signs both tokens and persists the refresh token. With a
// currentToken the store swap is conditional (rotation); without one the
// login path overwrites whatever session existed. Tokens that fail to
// persist are discarded, never returned, and the failure surfaces as
// Unauthorized regardless of path.
func (s *Service) issuePair(u *models.UserModel, appClient models.AppClient, currentToken string) (*TokenPair, error) {
	access, err := s.codec.IssueAccess(u.ID, u.Email, u.UserGroupID, appClient)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueRefresh(u.ID, u.Email, appClient)
	if err != nil {
		return nil, err
	}

	if currentToken != "" {
		err = s.tokens.RotateRefreshToken(u.ID, appClient, currentToken, refresh)
	} else {
		err = s.tokens.UpsertRefreshToken(u.ID, appClient, refresh)
	}
	if err != nil {
		return nil, apperr.New(apperr.Unauthorized)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/login", h.login)
	g.POST("/register", h.register)
	g.POST("/refresh-token", h.refresh)
	g.GET("/logged", authMW, h.logged)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	pair, err := h.svc.Login(dto.Email, dto.Password, models.AppClient(dto.AppClient))
	if err != nil {
		response.AuthError(c, err)
		return
	}
	response.OK(c, pair)
}

func (h *Handler) register(c *gin.Context) {
	var dto user.CreateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.Register(&dto); err != nil {
		response.AuthError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) refresh(c *gin.Context) {
	var dto RefreshDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	pair, err := h.svc.Refresh(dto.RefreshToken)
	if err != nil {
		response.AuthError(c, err)
		return
	}
	response.OK(c, pair)
}

func (h *Handler) logged(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		response.Unauthorized(c)
		return
	}
	u, err := h.svc.Logged(p.UserID)
	if err != nil {
		response.AuthError(c, err)
		return
	}
	response.OK(c, user.ToResponse(u))
}
