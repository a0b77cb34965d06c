package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"maitred/internal/config"
	"maitred/internal/models"
	"maitred/internal/service"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// OccupancyExporter writes a weekly occupancy report as an xlsx file: one
// row per weekday, one column per time slot, each cell "booked/total".
type OccupancyExporter struct {
	reservations *service.ReservationService
	cfg          config.ExportConfig
	retry        RetryPolicy
	logger       zerolog.Logger
}

func NewOccupancyExporter(reservations *service.ReservationService, cfg config.ExportConfig, retry RetryPolicy, logger *zerolog.Logger) *OccupancyExporter {
	return &OccupancyExporter{
		reservations: reservations,
		cfg:          cfg,
		retry:        retry,
		logger:       logger.With().Str("component", "export").Logger(),
	}
}

// Start runs scheduled exports until the context is cancelled.
func (e *OccupancyExporter) Start(ctx context.Context) {
	if !e.cfg.Enabled {
		e.logger.Info().Msg("export worker is disabled")
		return
	}

	interval := 24 * time.Hour
	if e.cfg.Schedule != "" {
		if d, err := time.ParseDuration(e.cfg.Schedule); err == nil {
			interval = d
		} else {
			e.logger.Warn().Err(err).Str("schedule", e.cfg.Schedule).Msg("failed to parse export schedule, using default 24h")
		}
	}
	e.logger.Info().Dur("interval", interval).Msg("export worker started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.exportWithRetry(ctx)
		}
	}
}

func (e *OccupancyExporter) exportWithRetry(ctx context.Context) {
	attempts := e.retry.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		path, err := e.Export(ctx)
		if err == nil {
			e.logger.Info().Str("file_path", path).Msg("occupancy report written")
			return
		}
		e.logger.Error().Err(err).Int("attempt", attempt).Msg("export failed")
		if attempt == attempts {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(e.retry.NextDelay(attempt)):
		}
	}
}

// Export writes one report file and returns its path. Each day is read under
// its own lock, so the report is per-day consistent but not a cross-week
// snapshot.
func (e *OccupancyExporter) Export(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.cfg.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Occupancy"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	slots := append(models.DefaultSlots(), models.LateSlot)

	_ = f.SetCellValue(sheetName, "A1", "Day")
	for col, slot := range slots {
		cell, _ := excelize.CoordinatesToCellName(col+2, 1)
		_ = f.SetCellValue(sheetName, cell, fmt.Sprintf("%d:00", slot))
	}

	for row, day := range models.Weekdays() {
		cell, _ := excelize.CoordinatesToCellName(1, row+2)
		_ = f.SetCellValue(sheetName, cell, day)

		counts, err := e.reservations.Occupancy(ctx, day)
		if err != nil {
			return "", fmt.Errorf("error reading occupancy for %s: %w", day, err)
		}
		for col, slot := range slots {
			cell, _ := excelize.CoordinatesToCellName(col+2, row+2)
			if c, ok := counts[slot]; ok {
				_ = f.SetCellValue(sheetName, cell, fmt.Sprintf("%d/%d", c[0], c[1]))
			} else {
				_ = f.SetCellValue(sheetName, cell, "closed")
			}
		}
	}

	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, "A1", "J1", style)
	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("occupancy_%s.xlsx", time.Now().Format("2006-01-02_150405"))
	filePath := filepath.Join(e.cfg.Path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return filePath, nil
}
