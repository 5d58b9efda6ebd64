package stand

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/pkg/apperr"
	"github.com/eventstime/core/internal/pkg/pagination"
	"github.com/eventstime/core/internal/pkg/response"
)

type CreateStandDTO struct {
	Name            string `json:"name"              binding:"required"`
	IsCashier       bool   `json:"is_cashier"`
	EventID         uint   `json:"event_id"          binding:"required"`
	StandCategoryID uint   `json:"stand_category_id" binding:"required"`
}

type UpdateStandDTO struct {
	Name            *string `json:"name"`
	IsCashier       *bool   `json:"is_cashier"`
	EventID         *uint   `json:"event_id"`
	StandCategoryID *uint   `json:"stand_category_id"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query) ([]models.StandModel, response.Pagination, error) {
	tx := s.db.Model(&models.StandModel{}).Order("name ASC")
	var items []models.StandModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (s *Service) ListByEvent(eventID uint) ([]models.StandModel, error) {
	var items []models.StandModel
	err := s.db.Where("event_id = ?", eventID).Order("name ASC").Find(&items).Error
	return items, err
}

func (s *Service) FindByID(id uint) (*models.StandModel, error) {
	var st models.StandModel
	if err := s.db.First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.StandNotFound)
		}
		return nil, err
	}
	return &st, nil
}

func (s *Service) Create(dto *CreateStandDTO) (*models.StandModel, error) {
	if err := s.validateRefs(dto.EventID, dto.StandCategoryID); err != nil {
		return nil, err
	}
	st := models.StandModel{
		Name:            dto.Name,
		IsCashier:       dto.IsCashier,
		EventID:         dto.EventID,
		StandCategoryID: dto.StandCategoryID,
	}
	return &st, s.db.Create(&st).Error
}

func (s *Service) Update(id uint, dto *UpdateStandDTO) (*models.StandModel, error) {
	st, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.IsCashier != nil {
		updates["is_cashier"] = *dto.IsCashier
	}
	if dto.EventID != nil {
		if err := s.countRef(&models.EventModel{}, *dto.EventID, apperr.EventNotFound); err != nil {
			return nil, err
		}
		updates["event_id"] = *dto.EventID
	}
	if dto.StandCategoryID != nil {
		if err := s.countRef(&models.StandCategoryModel{}, *dto.StandCategoryID, apperr.StandCategoryNotFound); err != nil {
			return nil, err
		}
		updates["stand_category_id"] = *dto.StandCategoryID
	}

	if err := s.db.Model(st).Updates(updates).Error; err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) Delete(id uint) error {
	if _, err := s.FindByID(id); err != nil {
		return err
	}
	return s.db.Delete(&models.StandModel{}, id).Error
}

func (s *Service) validateRefs(eventID, categoryID uint) error {
	if err := s.countRef(&models.EventModel{}, eventID, apperr.EventNotFound); err != nil {
		return err
	}
	return s.countRef(&models.StandCategoryModel{}, categoryID, apperr.StandCategoryNotFound)
}

func (s *Service) countRef(model interface{}, id uint, missing apperr.Kind) error {
	var count int64
	if err := s.db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.New(missing)
	}
	return nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/stands", authMW)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	if raw := c.Query("event_id"); raw != "" {
		eventID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || eventID == 0 {
			response.BadRequest(c, "invalid event_id")
			return
		}
		items, err := h.svc.ListByEvent(uint(eventID))
		if err != nil {
			response.InternalError(c)
			return
		}
		response.OK(c, items)
		return
	}

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
	st, err := h.svc.FindByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, st)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateStandDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	st, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, st)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var dto UpdateStandDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	st, err := h.svc.Update(id, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, st)
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
