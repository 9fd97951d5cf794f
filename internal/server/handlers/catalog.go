package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stockpos-system/internal/database/models"
	"stockpos-system/internal/units"
)

type CatalogHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewCatalogHandler(db *gorm.DB, redisClient *redis.Client) *CatalogHandler {
	return &CatalogHandler{
		db:    db,
		redis: redisClient,
	}
}

// SaveProductRequest carries prices per carton as the operator enters them.
// Stored prices are per piece, derived from the carton count.
type SaveProductRequest struct {
	ProductName          string  `json:"product_name" binding:"required"`
	Barcode              *string `json:"barcode,omitempty"`
	SKUPrefix            *string `json:"sku_prefix,omitempty"`
	RetailPriceCarton    string  `json:"retail_price_carton" binding:"required"`
	WholesalePriceCarton string  `json:"wholesale_price_carton,omitempty"`
	PiecesPerPack        int64   `json:"pieces_per_pack" binding:"required,min=1"`
	PiecesPerCarton      int64   `json:"pieces_per_carton" binding:"required,min=1"`
}

type ListProductsQuery struct {
	Search string `form:"search,omitempty"`
}

func (h *CatalogHandler) invalidateCatalogCaches(c *gin.Context, barcodes ...*string) {
	keys := []string{CATALOG_CACHE_KEY}
	for _, b := range barcodes {
		if b != nil && *b != "" {
			keys = append(keys, BARCODE_KEY_PREFIX+*b)
		}
	}
	cacheInvalidate(c.Request.Context(), h.redis, keys...)
}

// SaveProduct creates a product or updates the one with the same name.
func (h *CatalogHandler) SaveProduct(c *gin.Context) {
	var req SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	name := strings.TrimSpace(req.ProductName)
	if name == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Product name required"))
		return
	}
	if req.PiecesPerCarton < req.PiecesPerPack {
		c.JSON(http.StatusBadRequest, errorResponse("Carton cannot hold fewer pieces than a pack"))
		return
	}

	cartonRetail, err := decimal.NewFromString(req.RetailPriceCarton)
	if err != nil || cartonRetail.IsNegative() {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid retail price"))
		return
	}
	cartonWholesale := cartonRetail
	if req.WholesalePriceCarton != "" {
		cartonWholesale, err = decimal.NewFromString(req.WholesalePriceCarton)
		if err != nil || cartonWholesale.IsNegative() {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid wholesale price"))
			return
		}
	}

	cartonCount := decimal.NewFromInt(req.PiecesPerCarton)
	ratio := units.Ratio{PerPiece: 1, PerPack: req.PiecesPerPack, PerCarton: req.PiecesPerCarton}

	product := models.Product{
		ProductName:    name,
		Barcode:        req.Barcode,
		RetailPrice:    cartonRetail.Div(cartonCount).Round(4).String(),
		WholesalePrice: cartonWholesale.Div(cartonCount).Round(4).String(),
		UnitRatio:      ratio.String(),
	}
	if req.SKUPrefix != nil && *req.SKUPrefix != "" {
		product.SKUPrefix = *req.SKUPrefix
	}

	var existing models.Product
	err = h.db.Where("product_name = ?", name).First(&existing).Error
	switch {
	case err == nil:
		product.ID = existing.ID
		if product.SKUPrefix == "" {
			product.SKUPrefix = existing.SKUPrefix
		}
		if err := h.db.Model(&existing).Updates(map[string]interface{}{
			"barcode":         product.Barcode,
			"sku_prefix":      product.SKUPrefix,
			"retail_price":    product.RetailPrice,
			"wholesale_price": product.WholesalePrice,
			"unit_ratio":      product.UnitRatio,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse("Failed to update product"))
			return
		}
	case err == gorm.ErrRecordNotFound:
		if err := h.db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse("Failed to create product"))
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to look up product"))
		return
	}

	// Stocked copies of the pricing follow the catalog.
	h.db.Model(&models.StockEntry{}).
		Where("product_name = ?", name).
		Updates(map[string]interface{}{
			"retail_price":    product.RetailPrice,
			"wholesale_price": product.WholesalePrice,
			"unit_ratio":      product.UnitRatio,
			"barcode":         product.Barcode,
		})

	h.invalidateCatalogCaches(c, req.Barcode, existing.Barcode)
	c.JSON(http.StatusOK, successResponse("Product saved successfully", product))
}

// ListProducts returns the catalog, optionally filtered by a name substring.
// Unfiltered reads are served from cache.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	var products []models.Product
	if query.Search == "" {
		if cacheGetJSON(c.Request.Context(), h.redis, CATALOG_CACHE_KEY, &products) {
			c.JSON(http.StatusOK, successWithMetaResponse("Products retrieved successfully", products,
				gin.H{"total": len(products), "cached": true}))
			return
		}
	}

	q := h.db.Order("product_name ASC")
	if query.Search != "" {
		q = q.Where("product_name LIKE ?", "%"+query.Search+"%")
	}
	if err := q.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list products"))
		return
	}

	if query.Search == "" {
		cacheSetJSON(c.Request.Context(), h.redis, CATALOG_CACHE_KEY, products, CACHE_TTL_MEDIUM)
	}
	c.JSON(http.StatusOK, successWithMetaResponse("Products retrieved successfully", products,
		gin.H{"total": len(products)}))
}

// GetProductByBarcode resolves a scanned code against the catalog first and
// the stock ledger second, so unsold legacy stock stays scannable.
func (h *CatalogHandler) GetProductByBarcode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Barcode required"))
		return
	}

	cacheKey := BARCODE_KEY_PREFIX + code
	var cached models.Product
	if cacheGetJSON(c.Request.Context(), h.redis, cacheKey, &cached) {
		c.JSON(http.StatusOK, successResponse("Product retrieved successfully", cached))
		return
	}

	var product models.Product
	err := h.db.Where("barcode = ?", code).First(&product).Error
	if err == gorm.ErrRecordNotFound {
		var entry models.StockEntry
		if err2 := h.db.Where("barcode = ?", code).First(&entry).Error; err2 != nil {
			c.JSON(http.StatusNotFound, errorResponse("Product not found"))
			return
		}
		product = models.Product{
			ProductName:    entry.ProductName,
			Barcode:        entry.Barcode,
			RetailPrice:    entry.RetailPrice,
			WholesalePrice: entry.WholesalePrice,
			UnitRatio:      entry.UnitRatio,
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to look up barcode"))
		return
	}

	cacheSetJSON(c.Request.Context(), h.redis, cacheKey, product, CACHE_TTL_SHORT)
	c.JSON(http.StatusOK, successResponse("Product retrieved successfully", product))
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, errorResponse("Product not found"))
		return
	}

	if err := h.db.Delete(&models.Product{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to delete product"))
		return
	}

	h.invalidateCatalogCaches(c, product.Barcode)
	c.JSON(http.StatusOK, successResponse(
		fmt.Sprintf("Product %q deleted successfully", product.ProductName), nil))
}
