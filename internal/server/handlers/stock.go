package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stockpos-system/internal/database/models"
	"stockpos-system/internal/ledger"
	"stockpos-system/internal/metrics"
)

type StockHandler struct {
	db                *gorm.DB
	redis             *redis.Client
	ledger            *ledger.Ledger
	lowStockThreshold int64
}

func NewStockHandler(db *gorm.DB, redisClient *redis.Client, l *ledger.Ledger, lowStockThreshold int64) *StockHandler {
	return &StockHandler{
		db:                db,
		redis:             redisClient,
		ledger:            l,
		lowStockThreshold: lowStockThreshold,
	}
}

type ReceiveStockRequest struct {
	ProductName string  `json:"product_name" binding:"required"`
	Quantity    int64   `json:"quantity" binding:"required,min=1"`
	UnitType    string  `json:"unit_type,omitempty"`
	CostPrice   string  `json:"cost_price,omitempty"`
	Barcode     *string `json:"barcode,omitempty"`
}

type ListStockQuery struct {
	Search  string `form:"search,omitempty"`
	LowOnly bool   `form:"low_only,omitempty"`
}

// StockView is a stock row with figures derived at read time. Profit is
// revenue minus cost of the units actually sold.
type StockView struct {
	models.StockEntry
	Profit   string `json:"profit"`
	LowStock bool   `json:"low_stock"`
}

func (h *StockHandler) stockView(entry models.StockEntry) StockView {
	revenue, _ := decimal.NewFromString(entry.SoldRevenue)
	cost, _ := decimal.NewFromString(entry.CostPrice)
	profit := revenue.Sub(cost.Mul(decimal.NewFromInt(entry.SoldQuantity)))
	return StockView{
		StockEntry: entry,
		Profit:     profit.String(),
		LowStock:   entry.Quantity <= h.lowStockThreshold,
	}
}

// ListStock returns the stock ledger with derived profit and low-stock flags.
func (h *StockHandler) ListStock(c *gin.Context) {
	var query ListStockQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	q := h.db.Order("product_name ASC")
	if query.Search != "" {
		q = q.Where("product_name LIKE ?", "%"+query.Search+"%")
	}
	if query.LowOnly {
		q = q.Where("quantity <= ?", h.lowStockThreshold)
	}

	var entries []models.StockEntry
	if err := q.Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list stock"))
		return
	}

	views := make([]StockView, 0, len(entries))
	lowCount := 0
	for _, entry := range entries {
		view := h.stockView(entry)
		if view.LowStock {
			lowCount++
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Stock retrieved successfully", views,
		gin.H{"total": len(views), "low_stock": lowCount}))
}

// ReceiveStock credits a manual delivery into the stock ledger, creating the
// entry if the product has never been stocked. Quantity is interpreted in the
// given unit and stored in base pieces.
func (h *StockHandler) ReceiveStock(c *gin.Context) {
	var req ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}
	if req.CostPrice != "" {
		if _, err := decimal.NewFromString(req.CostPrice); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid cost price"))
			return
		}
	}

	entry, err := h.ledger.ReceiveStock(ledger.Receipt{
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		UnitType:    req.UnitType,
		CostPrice:   req.CostPrice,
		Barcode:     req.Barcode,
	}, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to receive stock"))
		return
	}

	cacheInvalidate(c.Request.Context(), h.redis, STOCK_CACHE_KEY)
	c.JSON(http.StatusOK, successResponse("Stock received successfully", h.stockView(*entry)))
}

func (h *StockHandler) DeleteStockEntry(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid stock entry ID"))
		return
	}

	result := h.db.Delete(&models.StockEntry{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to delete stock entry"))
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, errorResponse("Stock entry not found"))
		return
	}

	cacheInvalidate(c.Request.Context(), h.redis, STOCK_CACHE_KEY)
	c.JSON(http.StatusOK, successResponse("Stock entry deleted successfully", nil))
}

// Reconcile folds delivered, unprocessed, tracked orders into stock on
// demand. The background sweep runs the same operation on a timer.
func (h *StockHandler) Reconcile(c *gin.Context) {
	result, err := h.ledger.ReconcileDeliveredOrders(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to reconcile orders"))
		return
	}

	metrics.OrdersReconciledCounter.Add(float64(result.OrdersProcessed))
	cacheInvalidate(c.Request.Context(), h.redis, STOCK_CACHE_KEY, ORDER_SUMMARY_KEY)
	c.JSON(http.StatusOK, successResponse("Reconciliation completed", gin.H{
		"orders_processed": result.OrdersProcessed,
		"credited":         result.Credited,
	}))
}
