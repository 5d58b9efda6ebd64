// Package mobile serves the vendor app reads: the events a user is
// assigned to, the stands they work at, and the public menu of an event.
package mobile

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eventstime/core/internal/middleware"
	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/modules/event"
	"github.com/eventstime/core/internal/modules/productcategory"
	"github.com/eventstime/core/internal/pkg/apperr"
	"github.com/eventstime/core/internal/pkg/response"
)

type assignedStand struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	IsCashier     bool   `json:"is_cashier"`
	IsResponsible bool   `json:"is_responsible"`
}

type eventDetail struct {
	event.Response
	Stands []assignedStand `json:"stands"`
}

type Service struct {
	db   *gorm.DB
	menu *productcategory.Service
}

func NewService(db *gorm.DB, menu *productcategory.Service) *Service {
	return &Service{db: db, menu: menu}
}

// EventsByUser lists the events the user has at least one stand assignment
// in, most recent first.
func (s *Service) EventsByUser(userID uint) ([]models.EventModel, error) {
	var events []models.EventModel
	err := s.db.
		Joins("JOIN user_event_stands ues ON ues.event_id = events.id").
		Where("ues.user_id = ? AND ues.deleted_at IS NULL", userID).
		Group("events.id").
		Order("events.programmed_date_initial DESC").
		Find(&events).Error
	return events, err
}

// EventDetail returns one assigned event with the user's stands in it.
// Asking for an event the user is not assigned to looks the same as asking
// for one that does not exist.
func (s *Service) EventDetail(userID, eventID uint) (*eventDetail, error) {
	var ev models.EventModel
	err := s.db.
		Joins("JOIN user_event_stands ues ON ues.event_id = events.id").
		Where("ues.user_id = ? AND ues.event_id = ? AND ues.deleted_at IS NULL", userID, eventID).
		Group("events.id").
		First(&ev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.EventNotFound)
		}
		return nil, err
	}

	var assignments []models.UserEventStandModel
	err = s.db.
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Preload("Stand").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	detail := eventDetail{
		Response: event.ToResponse(&ev),
		Stands:   make([]assignedStand, 0, len(assignments)),
	}
	for _, a := range assignments {
		if a.Stand == nil {
			continue
		}
		detail.Stands = append(detail.Stands, assignedStand{
			ID:            a.Stand.ID,
			Name:          a.Stand.Name,
			IsCashier:     a.Stand.IsCashier,
			IsResponsible: a.IsResponsible,
		})
	}
	return &detail, nil
}

// Menu returns the event's product categories with products.
func (s *Service) Menu(eventID uint) ([]models.ProductCategoryModel, error) {
	return s.menu.FindMenuByEventID(eventID)
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/mobile", authMW)
	g.GET("/events", h.events)
	g.GET("/events/:id", h.eventDetail)
	g.GET("/events/:id/menu", h.menu)
}

func (h *Handler) events(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		response.Unauthorized(c)
		return
	}
	events, err := h.svc.EventsByUser(p.UserID)
	if err != nil {
		response.InternalError(c)
		return
	}
	out := make([]event.Response, len(events))
	for i := range events {
		out[i] = event.ToResponse(&events[i])
	}
	response.OK(c, out)
}

func (h *Handler) eventDetail(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		response.Unauthorized(c)
		return
	}
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.EventDetail(p.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

func (h *Handler) menu(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	categories, err := h.svc.Menu(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, categories)
}
