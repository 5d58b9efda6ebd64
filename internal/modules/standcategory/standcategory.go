package standcategory

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/pkg/apperr"
	"github.com/eventstime/core/internal/pkg/pagination"
	"github.com/eventstime/core/internal/pkg/response"
)

type CreateStandCategoryDTO struct {
	Name    string `json:"name"     binding:"required"`
	EventID uint   `json:"event_id" binding:"required"`
}

type UpdateStandCategoryDTO struct {
	Name    *string `json:"name"`
	EventID *uint   `json:"event_id"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query) ([]models.StandCategoryModel, response.Pagination, error) {
	tx := s.db.Model(&models.StandCategoryModel{}).Order("name ASC")
	var items []models.StandCategoryModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (s *Service) FindByID(id uint) (*models.StandCategoryModel, error) {
	var sc models.StandCategoryModel
	if err := s.db.First(&sc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.StandCategoryNotFound)
		}
		return nil, err
	}
	return &sc, nil
}

func (s *Service) Create(dto *CreateStandCategoryDTO) (*models.StandCategoryModel, error) {
	if err := eventExists(s.db, dto.EventID); err != nil {
		return nil, err
	}
	sc := models.StandCategoryModel{Name: dto.Name, EventID: dto.EventID}
	return &sc, s.db.Create(&sc).Error
}

func (s *Service) Update(id uint, dto *UpdateStandCategoryDTO) (*models.StandCategoryModel, error) {
	sc, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.EventID != nil {
		if err := eventExists(s.db, *dto.EventID); err != nil {
			return nil, err
		}
		updates["event_id"] = *dto.EventID
	}

	if err := s.db.Model(sc).Updates(updates).Error; err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Service) Delete(id uint) error {
	if _, err := s.FindByID(id); err != nil {
		return err
	}
	return s.db.Delete(&models.StandCategoryModel{}, id).Error
}

func eventExists(db *gorm.DB, eventID uint) error {
	var count int64
	if err := db.Model(&models.EventModel{}).Where("id = ?", eventID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.New(apperr.EventNotFound)
	}
	return nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/stand-categories", authMW)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	items, pag, err := h.svc.List(q)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.Paged(c, items, pag)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	sc, err := h.svc.FindByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sc)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateStandCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sc, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sc)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var dto UpdateStandCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sc, err := h.svc.Update(id, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sc)
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
