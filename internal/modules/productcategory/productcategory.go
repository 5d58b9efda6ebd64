package productcategory

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/pkg/apperr"
	"github.com/eventstime/core/internal/pkg/pagination"
	"github.com/eventstime/core/internal/pkg/response"
)

type CreateProductCategoryDTO struct {
	Name    string `json:"name"     binding:"required"`
	EventID uint   `json:"event_id" binding:"required"`
}

type UpdateProductCategoryDTO struct {
	Name    *string `json:"name"`
	EventID *uint   `json:"event_id"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query) ([]models.ProductCategoryModel, response.Pagination, error) {
	tx := s.db.Model(&models.ProductCategoryModel{}).Order("name ASC")
	var items []models.ProductCategoryModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (s *Service) FindByID(id uint) (*models.ProductCategoryModel, error) {
	var pc models.ProductCategoryModel
	if err := s.db.First(&pc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ProductCategoryNotFound)
		}
		return nil, err
	}
	return &pc, nil
}

// FindMenuByEventID returns the event's categories with their products,
// both alphabetical, images preloaded. This is the read behind the public
// menu screen.
func (s *Service) FindMenuByEventID(eventID uint) ([]models.ProductCategoryModel, error) {
	if err := s.eventExists(eventID); err != nil {
		return nil, err
	}

	var categories []models.ProductCategoryModel
	err := s.db.
		Where("event_id = ?", eventID).
		Order("name ASC").
		Preload("Products", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("products.name ASC")
		}).
		Preload("Products.ProductFile").
		Find(&categories).Error
	return categories, err
}

func (s *Service) Create(dto *CreateProductCategoryDTO) (*models.ProductCategoryModel, error) {
	if err := s.eventExists(dto.EventID); err != nil {
		return nil, err
	}
	pc := models.ProductCategoryModel{Name: dto.Name, EventID: dto.EventID}
	return &pc, s.db.Create(&pc).Error
}

func (s *Service) Update(id uint, dto *UpdateProductCategoryDTO) (*models.ProductCategoryModel, error) {
	pc, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.EventID != nil {
		if err := s.eventExists(*dto.EventID); err != nil {
			return nil, err
		}
		updates["event_id"] = *dto.EventID
	}

	if err := s.db.Model(pc).Updates(updates).Error; err != nil {
		return nil, err
	}
	return pc, nil
}

func (s *Service) Delete(id uint) error {
	if _, err := s.FindByID(id); err != nil {
		return err
	}
	return s.db.Delete(&models.ProductCategoryModel{}, id).Error
}

func (s *Service) eventExists(eventID uint) error {
	var count int64
	if err := s.db.Model(&models.EventModel{}).Where("id = ?", eventID).Count(&count).Error; err != nil {
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
	g := rg.Group("/product-categories", authMW)
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
	pc, err := h.svc.FindByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, pc)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateProductCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	pc, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pc)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var dto UpdateProductCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	pc, err := h.svc.Update(id, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, pc)
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
