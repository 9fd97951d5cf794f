package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"stockpos-system/internal/sheets"
	"stockpos-system/internal/update"
)

type SystemHandler struct {
	exporter *sheets.Exporter
	checker  *update.Checker
	version  string

	mu         sync.Mutex
	lastCheck  *update.CheckResult
	stagedPath string
}

func NewSystemHandler(exporter *sheets.Exporter, checker *update.Checker, version string) *SystemHandler {
	return &SystemHandler{
		exporter: exporter,
		checker:  checker,
		version:  version,
	}
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse("Service is healthy", gin.H{
		"status":  "ok",
		"version": h.version,
	}))
}

// ExportOrders pushes the visible order ledger to the configured worksheet.
func (h *SystemHandler) ExportOrders(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("Sheets export is not configured"))
		return
	}

	rows, err := h.exporter.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to export orders"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Orders exported successfully", gin.H{"rows": rows}))
}

// CheckUpdate queries the release feed and remembers the result so a later
// stage request does not have to refetch it.
func (h *SystemHandler) CheckUpdate(c *gin.Context) {
	if h.checker == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("Update channel is not configured"))
		return
	}

	result, err := h.checker.Check(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, errorResponse("Failed to check for updates"))
		return
	}

	h.mu.Lock()
	h.lastCheck = result
	h.mu.Unlock()

	c.JSON(http.StatusOK, successResponse("Update check completed", result))
}

// StageUpdate downloads the asset from the last successful check.
func (h *SystemHandler) StageUpdate(c *gin.Context) {
	if h.checker == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("Update channel is not configured"))
		return
	}

	h.mu.Lock()
	last := h.lastCheck
	h.mu.Unlock()

	if last == nil || !last.UpdateAvailable {
		c.JSON(http.StatusConflict, errorResponse("No update available to stage"))
		return
	}

	path, err := h.checker.Stage(c.Request.Context(), last)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to stage update"))
		return
	}

	h.mu.Lock()
	h.stagedPath = path
	h.mu.Unlock()

	c.JSON(http.StatusOK, successResponse("Update staged successfully", gin.H{
		"version": last.LatestVersion,
		"path":    path,
	}))
}

// ApplyUpdate hands the staged asset to the external installer script.
func (h *SystemHandler) ApplyUpdate(c *gin.Context) {
	if h.checker == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("Update channel is not configured"))
		return
	}

	h.mu.Lock()
	staged := h.stagedPath
	h.mu.Unlock()

	if staged == "" {
		c.JSON(http.StatusConflict, errorResponse("No staged update to apply"))
		return
	}

	if err := h.checker.Handoff(staged); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to start update handoff"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Update handoff started", gin.H{"path": staged}))
}
