// Package sheets mirrors the visible order ledger into a Google Sheets
// worksheet. Each export clears and rewrites the whole sheet so the remote
// copy never drifts from the local database.
package sheets

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"gorm.io/gorm"

	"stockpos-system/internal/database/models"
)

type Exporter struct {
	db              *gorm.DB
	credentialsFile string
	spreadsheetID   string
	sheetName       string
	log             *zap.Logger
}

func NewExporter(db *gorm.DB, credentialsFile, spreadsheetID, sheetName string, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		db:              db,
		credentialsFile: credentialsFile,
		spreadsheetID:   spreadsheetID,
		sheetName:       sheetName,
		log:             log,
	}
}

var headerRow = []interface{}{
	"ID", "Product", "Shop", "Units", "Unit Type", "Price",
	"Payment", "Tracking", "Shipping", "Status", "Processed", "Created At",
}

// Export pushes all non-hidden orders and returns the number of data rows
// written, not counting the header.
func (e *Exporter) Export(ctx context.Context) (int, error) {
	if e.credentialsFile == "" || e.spreadsheetID == "" {
		return 0, fmt.Errorf("sheets export is not configured")
	}

	var orders []models.Order
	if err := e.db.WithContext(ctx).
		Where("hidden = ?", false).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return 0, err
	}

	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(e.credentialsFile))
	if err != nil {
		return 0, fmt.Errorf("failed to create sheets service: %w", err)
	}

	values := make([][]interface{}, 0, len(orders)+1)
	values = append(values, headerRow)
	for _, o := range orders {
		values = append(values, []interface{}{
			strconv.FormatInt(o.ID, 10),
			o.ProductName,
			o.Shop,
			strconv.FormatInt(o.Units, 10),
			o.UnitType,
			o.Price,
			o.Payment,
			o.Tracking,
			o.Shipping,
			o.Status,
			strconv.FormatBool(o.Processed),
			o.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	if _, err := svc.Spreadsheets.Values.
		Clear(e.spreadsheetID, e.sheetName, &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("failed to clear sheet: %w", err)
	}

	if _, err := svc.Spreadsheets.Values.
		Update(e.spreadsheetID, e.sheetName, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("failed to write sheet: %w", err)
	}

	e.log.Info("exported orders to sheet",
		zap.String("sheet", e.sheetName),
		zap.Int("rows", len(orders)))
	return len(orders), nil
}
