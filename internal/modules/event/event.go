package event

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/pkg/apperr"
	"github.com/eventstime/core/internal/pkg/pagination"
	"github.com/eventstime/core/internal/pkg/response"
)

const dateLayout = "2006-01-02"

type CreateEventDTO struct {
	Name                  string  `json:"name"                    binding:"required"`
	Address               *string `json:"address"`
	IsPublic              bool    `json:"is_public"`
	ProgrammedDateInitial string  `json:"programmed_date_initial" binding:"required"`
	ProgrammedDateFinal   string  `json:"programmed_date_final"   binding:"required"`
}

type UpdateEventDTO struct {
	Name                  *string `json:"name"`
	Address               *string `json:"address"`
	IsPublic              *bool   `json:"is_public"`
	ProgrammedDateInitial *string `json:"programmed_date_initial"`
	ProgrammedDateFinal   *string `json:"programmed_date_final"`
}

type Response struct {
	ID                    uint    `json:"id"`
	Name                  string  `json:"name"`
	Address               *string `json:"address"`
	IsPublic              bool    `json:"is_public"`
	ProgrammedDateInitial string  `json:"programmed_date_initial"`
	ProgrammedDateFinal   string  `json:"programmed_date_final"`
}

func ToResponse(e *models.EventModel) Response {
	return Response{
		ID:                    e.ID,
		Name:                  e.Name,
		Address:               e.Address,
		IsPublic:              e.IsPublic,
		ProgrammedDateInitial: e.ProgrammedDateInitial.Format(dateLayout),
		ProgrammedDateFinal:   e.ProgrammedDateFinal.Format(dateLayout),
	}
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query) ([]models.EventModel, response.Pagination, error) {
	tx := s.db.Model(&models.EventModel{}).Order("programmed_date_initial DESC")
	var items []models.EventModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (s *Service) FindByID(id uint) (*models.EventModel, error) {
	var e models.EventModel
	if err := s.db.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.EventNotFound)
		}
		return nil, err
	}
	return &e, nil
}

func (s *Service) Create(dto *CreateEventDTO) (*models.EventModel, error) {
	initial, final, err := parseDates(dto.ProgrammedDateInitial, dto.ProgrammedDateFinal)
	if err != nil {
		return nil, err
	}

	e := models.EventModel{
		Name:                  dto.Name,
		Address:               dto.Address,
		IsPublic:              dto.IsPublic,
		ProgrammedDateInitial: initial,
		ProgrammedDateFinal:   final,
	}
	return &e, s.db.Create(&e).Error
}

func (s *Service) Update(id uint, dto *UpdateEventDTO) (*models.EventModel, error) {
	e, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Address != nil {
		updates["address"] = *dto.Address
	}
	if dto.IsPublic != nil {
		updates["is_public"] = *dto.IsPublic
	}
	if dto.ProgrammedDateInitial != nil {
		d, err := parseDate(*dto.ProgrammedDateInitial)
		if err != nil {
			return nil, err
		}
		updates["programmed_date_initial"] = d
	}
	if dto.ProgrammedDateFinal != nil {
		d, err := parseDate(*dto.ProgrammedDateFinal)
		if err != nil {
			return nil, err
		}
		updates["programmed_date_final"] = d
	}

	if err := s.db.Model(e).Updates(updates).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Delete(id uint) error {
	if _, err := s.FindByID(id); err != nil {
		return err
	}
	return s.db.Delete(&models.EventModel{}, id).Error
}

func parseDates(initial, final string) (time.Time, time.Time, error) {
	i, err := parseDate(initial)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	f, err := parseDate(final)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return i, f, nil
}

func parseDate(v string) (time.Time, error) {
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, apperr.New(apperr.InvalidDate)
	}
	return d, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/events", authMW)
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
	e, err := h.svc.FindByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ToResponse(e))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateEventDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	e, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ToResponse(e))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var dto UpdateEventDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	e, err := h.svc.Update(id, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ToResponse(e))
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
