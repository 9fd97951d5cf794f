package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"stockpos-system/internal/database/models"
	"stockpos-system/internal/ledger"
)

type OrderHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	ledger *ledger.Ledger
}

func NewOrderHandler(db *gorm.DB, redisClient *redis.Client, l *ledger.Ledger) *OrderHandler {
	return &OrderHandler{
		db:     db,
		redis:  redisClient,
		ledger: l,
	}
}

type CreateOrderRequest struct {
	ProductName string `json:"product_name" binding:"required"`
	Shop        string `json:"shop,omitempty"`
	Units       int64  `json:"units" binding:"required,min=1"`
	UnitType    string `json:"unit_type,omitempty"`
	Price       string `json:"price,omitempty"`
	Payment     string `json:"payment,omitempty"`
	Tracking    string `json:"tracking,omitempty"`
}

type UpdateTrackingRequest struct {
	Tracking string `json:"tracking" binding:"required"`
}

type ForceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListOrdersQuery struct {
	Search string `form:"search,omitempty"`
	Status string `form:"status,omitempty"`
}

// CreateOrder records an incoming purchase order. The shipping provider is
// inferred from the tracking prefix and the initial status from whether a
// tracking number exists yet.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	name := strings.TrimSpace(req.ProductName)
	if name == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Product name required"))
		return
	}

	tracking := strings.TrimSpace(req.Tracking)
	status := models.OrderStatusPending
	if tracking != "" {
		status = models.OrderStatusInTransit
	}

	unitType := req.UnitType
	if unitType == "" {
		unitType = "carton"
	}
	price := req.Price
	if price == "" {
		price = "0"
	}

	now := time.Now()
	order := models.Order{
		ProductName:     name,
		Shop:            req.Shop,
		Units:           req.Units,
		UnitType:        unitType,
		Price:           price,
		Payment:         req.Payment,
		Tracking:        tracking,
		Shipping:        ledger.ShippingProvider(tracking),
		Status:          status,
		StatusUpdatedAt: &now,
	}
	if err := h.db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create order"))
		return
	}

	cacheInvalidate(c.Request.Context(), h.redis, ORDER_SUMMARY_KEY)
	c.JSON(http.StatusOK, successResponse("Order created successfully", order))
}

type ImportOrdersRequest struct {
	Orders []CreateOrderRequest `json:"orders" binding:"required,min=1"`
}

// ImportOrders records a batch of orders in one transaction. A single bad row
// rejects the whole batch so a partial import never needs cleaning up.
func (h *OrderHandler) ImportOrders(c *gin.Context) {
	var req ImportOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	now := time.Now()
	orders := make([]models.Order, 0, len(req.Orders))
	for i, row := range req.Orders {
		name := strings.TrimSpace(row.ProductName)
		if name == "" || row.Units <= 0 {
			c.JSON(http.StatusBadRequest, errorResponse(
				fmt.Sprintf("Row %d: product name and positive units required", i+1)))
			return
		}

		tracking := strings.TrimSpace(row.Tracking)
		status := models.OrderStatusPending
		if tracking != "" {
			status = models.OrderStatusInTransit
		}
		unitType := row.UnitType
		if unitType == "" {
			unitType = "carton"
		}
		price := row.Price
		if price == "" {
			price = "0"
		}

		statusAt := now
		orders = append(orders, models.Order{
			ProductName:     name,
			Shop:            row.Shop,
			Units:           row.Units,
			UnitType:        unitType,
			Price:           price,
			Payment:         row.Payment,
			Tracking:        tracking,
			Shipping:        ledger.ShippingProvider(tracking),
			Status:          status,
			StatusUpdatedAt: &statusAt,
		})
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&orders).Error
	}); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to import orders"))
		return
	}

	cacheInvalidate(c.Request.Context(), h.redis, ORDER_SUMMARY_KEY)
	c.JSON(http.StatusOK, successResponse("Orders imported successfully", gin.H{
		"imported": len(orders),
	}))
}

// ListOrders returns visible orders, newest first.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}
	if query.Status != "" && !models.ValidOrderStatus(query.Status) {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid order status"))
		return
	}

	q := h.db.Where("hidden = ?", false).Order("created_at DESC")
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		q = q.Where("product_name LIKE ? OR shop LIKE ? OR tracking LIKE ?", pattern, pattern, pattern)
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list orders"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Orders retrieved successfully", orders,
		gin.H{"total": len(orders)}))
}

// UpdateTracking sets the tracking number on an order, re-detects the
// shipping provider, and moves a pending order into transit.
func (h *OrderHandler) UpdateTracking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid order ID"))
		return
	}

	var req UpdateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}
	tracking := strings.TrimSpace(req.Tracking)
	if tracking == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Tracking number required"))
		return
	}

	var order models.Order
	if err := h.db.First(&order, id).Error; err != nil {
		c.JSON(http.StatusNotFound, errorResponse("Order not found"))
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"tracking": tracking,
		"shipping": ledger.ShippingProvider(tracking),
	}
	if order.Status == models.OrderStatusPending {
		updates["status"] = models.OrderStatusInTransit
		updates["status_updated_at"] = now
	}
	if err := h.db.Model(&order).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to update tracking"))
		return
	}
	if err := h.db.First(&order, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to reload order"))
		return
	}

	cacheInvalidate(c.Request.Context(), h.redis, ORDER_SUMMARY_KEY)
	c.JSON(http.StatusOK, successResponse("Tracking updated successfully", order))
}

// SetStatus forces an order into an explicit status, overriding the
// automatic rules. Marking delivered makes the order eligible for the next
// reconcile sweep.
func (h *OrderHandler) SetStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid order ID"))
		return
	}

	var req ForceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	err := h.ledger.ForceOrderStatus(id, req.Status, time.Now())
	switch {
	case err == gorm.ErrRecordNotFound:
		c.JSON(http.StatusNotFound, errorResponse("Order not found"))
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, errorResponse("Invalid order status"))
		return
	}

	cacheInvalidate(c.Request.Context(), h.redis, ORDER_SUMMARY_KEY)
	c.JSON(http.StatusOK, successResponse("Order status updated successfully", gin.H{
		"id":     id,
		"status": req.Status,
	}))
}

// RefreshStatuses applies the automatic status rules to every active order,
// the same pass the background sweep runs.
func (h *OrderHandler) RefreshStatuses(c *gin.Context) {
	changed, err := h.ledger.RefreshOrderStatuses(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to refresh order statuses"))
		return
	}

	cacheInvalidate(c.Request.Context(), h.redis, ORDER_SUMMARY_KEY)
	c.JSON(http.StatusOK, successResponse("Order statuses refreshed", gin.H{"changed": changed}))
}

// HideDelivered removes processed, delivered orders from the visible ledger
// without deleting their history.
func (h *OrderHandler) HideDelivered(c *gin.Context) {
	result := h.db.Model(&models.Order{}).
		Where("status = ? AND processed = ? AND hidden = ?", models.OrderStatusDelivered, true, false).
		Update("hidden", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to hide delivered orders"))
		return
	}

	cacheInvalidate(c.Request.Context(), h.redis, ORDER_SUMMARY_KEY)
	c.JSON(http.StatusOK, successResponse("Delivered orders hidden", gin.H{
		"hidden": result.RowsAffected,
	}))
}

// StatusSummary counts visible orders per status. Served from cache between
// writes.
func (h *OrderHandler) StatusSummary(c *gin.Context) {
	summary := map[string]int64{}
	if cacheGetJSON(c.Request.Context(), h.redis, ORDER_SUMMARY_KEY, &summary) {
		c.JSON(http.StatusOK, successResponse("Order summary retrieved successfully", summary))
		return
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Where("hidden = ?", false).
		Group("status").
		Scan(&counts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to summarize orders"))
		return
	}

	for _, s := range models.OrderStatuses {
		summary[s] = 0
	}
	for _, row := range counts {
		summary[row.Status] = row.Count
	}

	cacheSetJSON(c.Request.Context(), h.redis, ORDER_SUMMARY_KEY, summary, CACHE_TTL_SHORT)
	c.JSON(http.StatusOK, successResponse("Order summary retrieved successfully", summary))
}
