package controller

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type ItemController struct {
	catalogService service.CatalogService
}

func NewItemController(catalogService service.CatalogService) *ItemController {
	return &ItemController{catalogService: catalogService}
}

type CreateItemRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Price        *float64 `json:"price" binding:"required,gte=0"`
	Category     string   `json:"category" binding:"required"`
	ImageURL     string   `json:"imageUrl"`
	CountInStock *int     `json:"countInStock" binding:"omitempty,gte=0"`
}

// parsePriceBound reads an optional numeric query parameter. Empty means
// absent; anything that is not a finite number is rejected.
func parsePriceBound(c *gin.Context, key string) (*float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, false
	}
	return &value, true
}

// ListItems lists the catalog
// GET /api/items?category=&minPrice=&maxPrice=
func (ctrl *ItemController) ListItems(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var filter repository.ItemFilter
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}

	minPrice, ok := parsePriceBound(c, "minPrice")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "minPrice must be a number")
		return
	}
	maxPrice, ok := parsePriceBound(c, "maxPrice")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "maxPrice must be a number")
		return
	}
	filter.MinPrice = minPrice
	filter.MaxPrice = maxPrice

	items, err := ctrl.catalogService.ListItems(c.Request.Context(), filter)
	if err != nil {
		log.Error("Failed to list items", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetItem returns one item
// GET /api/items/:id
func (ctrl *ItemController) GetItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	// a malformed id cannot name an item, so it is reported as missing
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apperrors.NotFound(c, apperrors.ItemNotFound, "Item not found")
		return
	}

	item, err := ctrl.catalogService.GetItem(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			apperrors.NotFound(c, apperrors.ItemNotFound, "Item not found")
			return
		}
		log.Error("Failed to fetch item", err, map[string]interface{}{
			"item_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, item)
}

// CreateItem adds an item to the catalog (admin)
// POST /api/items
func (ctrl *ItemController) CreateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid item request", map[string]interface{}{
			"error": err.Error(),
		})
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			apperrors.RespondWithValidationError(c, fields)
			return
		}
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Name, description, price and category are required")
		return
	}

	item := &model.Item{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}
	if req.CountInStock != nil {
		item.CountInStock = *req.CountInStock
	}

	if err := ctrl.catalogService.CreateItem(c.Request.Context(), item); err != nil {
		if errors.Is(err, service.ErrInvalidItem) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
			return
		}
		log.Error("Failed to create item", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create item")
		return
	}

	c.JSON(http.StatusCreated, item)
}
