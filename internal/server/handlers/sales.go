package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"stockpos-system/internal/database/models"
	"stockpos-system/internal/ledger"
	"stockpos-system/internal/metrics"
	"stockpos-system/internal/receipt"
)

type SalesHandler struct {
	ledger  *ledger.Ledger
	redis   *redis.Client
	printer *receipt.Printer
	log     *zap.Logger
}

func NewSalesHandler(l *ledger.Ledger, redisClient *redis.Client, printer *receipt.Printer, log *zap.Logger) *SalesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SalesHandler{
		ledger:  l,
		redis:   redisClient,
		printer: printer,
		log:     log,
	}
}

type SaleLineRequest struct {
	ProductName string `json:"product_name" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required,min=1"`
	UnitType    string `json:"unit_type,omitempty"`
	Wholesale   bool   `json:"wholesale,omitempty"`
}

type CommitSaleRequest struct {
	Lines        []SaleLineRequest `json:"lines" binding:"required,min=1"`
	PrintReceipt bool              `json:"print_receipt,omitempty"`
}

func toSaleLine(req SaleLineRequest) ledger.SaleLine {
	return ledger.SaleLine{
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		UnitType:    req.UnitType,
		Wholesale:   req.Wholesale,
	}
}

func saleErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientStock):
		return http.StatusConflict, "Insufficient stock"
	case errors.Is(err, ledger.ErrProductNotStocked):
		return http.StatusNotFound, "Product not in stock"
	case errors.Is(err, ledger.ErrInvalidQuantity), errors.Is(err, ledger.ErrEmptySale):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Failed to process sale"
	}
}

// QuoteLine prices one cart line against live stock without committing it.
func (h *SalesHandler) QuoteLine(c *gin.Context) {
	var req SaleLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	quote, err := h.ledger.QuoteLine(toSaleLine(req))
	if err != nil {
		status, msg := saleErrorStatus(err)
		c.JSON(status, errorResponse(msg))
		return
	}

	c.JSON(http.StatusOK, successResponse("Line quoted successfully", quote))
}

// CommitSale commits a whole cart atomically and optionally prints a
// receipt. Lines the stock guard refused come back under "skipped".
func (h *SalesHandler) CommitSale(c *gin.Context) {
	var req CommitSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	lines := make([]ledger.SaleLine, 0, len(req.Lines))
	for _, lr := range req.Lines {
		lines = append(lines, toSaleLine(lr))
	}

	now := time.Now()
	result, err := h.ledger.CommitSale(lines, now)
	if err != nil {
		status, msg := saleErrorStatus(err)
		c.JSON(status, errorResponse(msg))
		return
	}

	applied := 0
	for _, line := range result.Lines {
		if line.Applied {
			applied++
		}
	}
	metrics.SalesCommittedCounter.WithLabelValues("applied").Add(float64(applied))
	metrics.SalesCommittedCounter.WithLabelValues("skipped").Add(float64(len(result.Skipped)))

	response := gin.H{
		"lines":   result.Lines,
		"skipped": result.Skipped,
		"total":   result.Total.String(),
	}

	if req.PrintReceipt && h.printer != nil && applied > 0 {
		path, perr := h.printer.Print(receiptLines(result), result.Total, now)
		if perr != nil {
			// The sale is already committed; report it with a warning
			// instead of failing the request.
			h.log.Warn("receipt print failed", zap.Error(perr))
			response["receipt_error"] = perr.Error()
		} else {
			response["receipt_path"] = path
		}
	}

	cacheInvalidate(c.Request.Context(), h.redis, STOCK_CACHE_KEY)
	c.JSON(http.StatusOK, successResponse("Sale committed successfully", response))
}

func receiptLines(result *ledger.CommitResult) []receipt.Line {
	lines := make([]receipt.Line, 0, len(result.Lines))
	for _, l := range result.Lines {
		if !l.Applied {
			continue
		}
		lines = append(lines, receipt.Line{
			Product:   l.ProductName,
			Quantity:  fmt.Sprintf("%d %s", l.Quantity, l.UnitType),
			UnitPrice: l.UnitPrice.StringFixed(2),
			Total:     l.LineTotal.StringFixed(2),
		})
	}
	return lines
}

// DailyTotal reports the running sales total for the current calendar day.
func (h *SalesHandler) DailyTotal(c *gin.Context) {
	total, err := h.ledger.DailySales(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to read daily total"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Daily total retrieved successfully", gin.H{
		"date":  time.Now().Format("2006-01-02"),
		"total": total.String(),
	}))
}

type ListSalesQuery struct {
	Product string `form:"product,omitempty"`
	Limit   int    `form:"limit,default=100"`
}

// ListSales returns recent sale records, newest first.
func (h *SalesHandler) ListSales(c *gin.Context) {
	var query ListSalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}
	if query.Limit <= 0 || query.Limit > 1000 {
		query.Limit = 100
	}

	q := h.ledger.DB().Order("sold_at DESC").Limit(query.Limit)
	if query.Product != "" {
		q = q.Where("product_name LIKE ?", "%"+query.Product+"%")
	}

	var records []models.SaleRecord
	if err := q.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list sales"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Sales retrieved successfully", records,
		gin.H{"total": len(records)}))
}
