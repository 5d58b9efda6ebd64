package user

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eventstime/core/internal/middleware"
	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/modules/usertoken"
	"github.com/eventstime/core/internal/pkg/apperr"
	"github.com/eventstime/core/internal/pkg/hash"
	"github.com/eventstime/core/internal/pkg/pagination"
	"github.com/eventstime/core/internal/pkg/response"
)

// Birth dates travel as plain calendar dates on the wire.
const dateLayout = "2006-01-02"

type CreateUserDTO struct {
	FirstName   string `json:"first_name"    binding:"required"`
	LastName    string `json:"last_name"     binding:"required"`
	BirthDate   string `json:"birth_date"    binding:"required"`
	Email       string `json:"email"         binding:"required,email"`
	Cellphone   string `json:"cellphone"`
	Password    string `json:"password"      binding:"required,min=6"`
	UserGroupID uint   `json:"user_group_id" binding:"required"`
}

type UpdateUserDTO struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	BirthDate   *string `json:"birth_date"`
	Email       *string `json:"email"     binding:"omitempty,email"`
	Cellphone   *string `json:"cellphone"`
	Password    *string `json:"password"  binding:"omitempty,min=6"`
	UserGroupID *uint   `json:"user_group_id"`
}

type TokenFcmDTO struct {
	TokenFcm string `json:"token_fcm" binding:"required"`
}

type Response struct {
	ID          uint   `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	BirthDate   string `json:"birth_date"`
	Email       string `json:"email"`
	Cellphone   string `json:"cellphone"`
	UserGroupID uint   `json:"user_group_id"`
}

// ToResponse converts a user record to its wire shape. The password hash
// never leaves the service layer.
func ToResponse(u *models.UserModel) Response {
	return Response{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		BirthDate:   u.BirthDate.Format(dateLayout),
		Email:       u.Email,
		Cellphone:   u.Cellphone,
		UserGroupID: u.UserGroupID,
	}
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query) ([]models.UserModel, response.Pagination, error) {
	tx := s.db.Model(&models.UserModel{}).Order("created_at DESC")
	var items []models.UserModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (s *Service) FindByID(id uint) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.UserNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) FindByEmail(email string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.UserNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := s.db.Model(&models.UserModel{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (s *Service) Create(dto *CreateUserDTO) (*models.UserModel, error) {
	exists, err := s.ExistsByEmail(dto.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.New(apperr.EmailAlreadyExist)
	}

	if err := s.groupExists(dto.UserGroupID); err != nil {
		return nil, err
	}

	birthDate, err := parseDate(dto.BirthDate)
	if err != nil {
		return nil, err
	}

	hashed, err := hash.Password(dto.Password)
	if err != nil {
		return nil, err
	}

	u := models.UserModel{
		FirstName:   dto.FirstName,
		LastName:    dto.LastName,
		BirthDate:   birthDate,
		Email:       dto.Email,
		Cellphone:   dto.Cellphone,
		Password:    hashed,
		UserGroupID: dto.UserGroupID,
	}
	return &u, s.db.Create(&u).Error
}

func (s *Service) Update(id uint, dto *UpdateUserDTO) (*models.UserModel, error) {
	u, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.FirstName != nil {
		updates["first_name"] = *dto.FirstName
	}
	if dto.LastName != nil {
		updates["last_name"] = *dto.LastName
	}
	if dto.BirthDate != nil {
		birthDate, err := parseDate(*dto.BirthDate)
		if err != nil {
			return nil, err
		}
		updates["birth_date"] = birthDate
	}
	if dto.Email != nil && *dto.Email != u.Email {
		exists, err := s.ExistsByEmail(*dto.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.New(apperr.EmailAlreadyExist)
		}
		updates["email"] = *dto.Email
	}
	if dto.Cellphone != nil {
		updates["cellphone"] = *dto.Cellphone
	}
	if dto.Password != nil {
		hashed, err := hash.Password(*dto.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}
	if dto.UserGroupID != nil {
		if err := s.groupExists(*dto.UserGroupID); err != nil {
			return nil, err
		}
		updates["user_group_id"] = *dto.UserGroupID
	}

	if err := s.db.Model(u).Updates(updates).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(id uint) error {
	if _, err := s.FindByID(id); err != nil {
		return err
	}
	return s.db.Delete(&models.UserModel{}, id).Error
}

func parseDate(v string) (time.Time, error) {
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, apperr.New(apperr.InvalidDate)
	}
	return d, nil
}

func (s *Service) groupExists(groupID uint) error {
	var count int64
	if err := s.db.Model(&models.UserGroupModel{}).Where("id = ?", groupID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.New(apperr.GroupNotFound)
	}
	return nil
}

type Handler struct {
	svc    *Service
	tokens *usertoken.Store
}

func NewHandler(svc *Service, tokens *usertoken.Store) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/users", authMW)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/token-fcm", h.setTokenFcm)
	g.DELETE("/token-fcm", h.clearTokenFcm)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	items, pag, err := h.svc.List(q)
	if err != nil {
		response.InternalError(c)
		return
	}
	out := make([]Response, len(items))
	for i := range items {
		out[i] = ToResponse(&items[i])
	}
	response.Paged(c, out, pag)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	u, err := h.svc.FindByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ToResponse(u))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ToResponse(u))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var dto UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Update(id, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ToResponse(u))
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) setTokenFcm(c *gin.Context) {
	var dto TokenFcmDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		response.Unauthorized(c)
		return
	}
	if err := h.tokens.SetPushToken(p.UserID, p.AppClient, dto.TokenFcm); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"ok": 1})
}

func (h *Handler) clearTokenFcm(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		response.Unauthorized(c)
		return
	}
	if err := h.tokens.ClearPushToken(p.UserID, p.AppClient); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

