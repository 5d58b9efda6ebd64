package product

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/modules/productfile"
	"github.com/eventstime/core/internal/pkg/apperr"
	"github.com/eventstime/core/internal/pkg/pagination"
	"github.com/eventstime/core/internal/pkg/response"
)

// Images beyond this size are rejected before touching S3.
const maxImageSize = 8 << 20

type CreateProductDTO struct {
	Name               string  `json:"name"                binding:"required"`
	Price              float64 `json:"price"               binding:"required,gte=0"`
	CustomFormTemplate *string `json:"custom_form_template"`
	ProductCategoryID  uint    `json:"product_category_id" binding:"required"`
	StandID            uint    `json:"stand_id"            binding:"required"`
}

type UpdateProductDTO struct {
	Name               *string  `json:"name"`
	Price              *float64 `json:"price" binding:"omitempty,gte=0"`
	CustomFormTemplate *string  `json:"custom_form_template"`
	ProductCategoryID  *uint    `json:"product_category_id"`
	StandID            *uint    `json:"stand_id"`
}

type Service struct {
	db    *gorm.DB
	files *productfile.Service
}

func NewService(db *gorm.DB, files *productfile.Service) *Service {
	return &Service{db: db, files: files}
}

func (s *Service) List(q pagination.Query) ([]models.ProductModel, response.Pagination, error) {
	tx := s.db.Model(&models.ProductModel{}).Order("name ASC").Preload("ProductFile")
	var items []models.ProductModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (s *Service) FindByID(id uint) (*models.ProductModel, error) {
	var p models.ProductModel
	if err := s.db.Preload("ProductFile").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ProductNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) Create(dto *CreateProductDTO) (*models.ProductModel, error) {
	if err := s.validateRefs(dto.ProductCategoryID, dto.StandID); err != nil {
		return nil, err
	}
	p := models.ProductModel{
		Name:               dto.Name,
		Price:              dto.Price,
		CustomFormTemplate: dto.CustomFormTemplate,
		ProductCategoryID:  dto.ProductCategoryID,
		StandID:            dto.StandID,
	}
	return &p, s.db.Create(&p).Error
}

func (s *Service) Update(id uint, dto *UpdateProductDTO) (*models.ProductModel, error) {
	p, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Price != nil {
		updates["price"] = *dto.Price
	}
	if dto.CustomFormTemplate != nil {
		updates["custom_form_template"] = *dto.CustomFormTemplate
	}
	if dto.ProductCategoryID != nil {
		if err := s.countRef(&models.ProductCategoryModel{}, *dto.ProductCategoryID, apperr.ProductCategoryNotFound); err != nil {
			return nil, err
		}
		updates["product_category_id"] = *dto.ProductCategoryID
	}
	if dto.StandID != nil {
		if err := s.countRef(&models.StandModel{}, *dto.StandID, apperr.StandNotFound); err != nil {
			return nil, err
		}
		updates["stand_id"] = *dto.StandID
	}

	if err := s.db.Model(p).Updates(updates).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(id uint) error {
	if _, err := s.FindByID(id); err != nil {
		return err
	}
	return s.db.Delete(&models.ProductModel{}, id).Error
}

// AttachImage uploads a new image for the product and swaps the reference.
// The previous image, if any, is removed after the swap so a failed upload
// never leaves the product without a picture.
func (s *Service) AttachImage(ctx context.Context, id uint, originalName, mediaType string, payload []byte) (*models.ProductModel, error) {
	p, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	previousFileID := p.ProductFileID

	pf, err := s.files.Create(ctx, originalName, mediaType, payload)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(p).Update("product_file_id", pf.ID).Error; err != nil {
		return nil, err
	}

	if previousFileID != nil {
		if err := s.files.Remove(ctx, *previousFileID); err != nil &&
			!apperr.IsKind(err, apperr.ProductFileNotFound) {
			return nil, err
		}
	}

	p.ProductFileID = &pf.ID
	p.ProductFile = pf
	return p, nil
}

func (s *Service) validateRefs(categoryID, standID uint) error {
	if err := s.countRef(&models.ProductCategoryModel{}, categoryID, apperr.ProductCategoryNotFound); err != nil {
		return err
	}
	return s.countRef(&models.StandModel{}, standID, apperr.StandNotFound)
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
	g := rg.Group("/products", authMW)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/upload-image", h.uploadImage)
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
	p, err := h.svc.FindByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateProductDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var dto UpdateProductDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Update(id, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
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

func (h *Handler) uploadImage(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing multipart field: file")
		return
	}
	if fileHeader.Size > maxImageSize {
		response.BadRequest(c, "file too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer f.Close()

	payload, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		response.InternalError(c)
		return
	}
	if len(payload) > maxImageSize {
		response.BadRequest(c, "file too large")
		return
	}

	mediaType := fileHeader.Header.Get("Content-Type")
	p, err := h.svc.AttachImage(c.Request.Context(), id, fileHeader.Filename, mediaType, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}
