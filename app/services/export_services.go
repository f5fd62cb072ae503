package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/pkg/logger"
	"github.com/shashiranjanraj/kuman/pkg/storage"
)

// ExportService writes listings as CSV to a storage disk.
type ExportService struct {
	disk storage.Disk
	now  func() time.Time
}

func NewExportService(disk storage.Disk) *ExportService {
	return &ExportService{disk: disk, now: time.Now}
}

// Orders writes orders and returns the locator of the file.
func (s *ExportService) Orders(ctx context.Context, orders []models.Order) (string, error) {
	rows := [][]string{{"orderId", "orderStatus", "requester", "walker", "canteen", "shopId", "items", "totalPrice", "shippingFee", "orderDate"}}
	for _, o := range orders {
		rows = append(rows, []string{
			strconv.FormatInt(o.OrderID, 10),
			string(o.OrderStatus),
			o.Requester.Username,
			o.Walker.Username,
			o.Canteen,
			strconv.FormatInt(o.ShopID, 10),
			strconv.Itoa(len(o.OrderItem)),
			money(o.TotalPrice),
			money(o.ShippingFee),
			stamp(o.OrderDate),
		})
	}
	return s.write(ctx, "orders", rows)
}

// Reports writes reports and returns the locator of the file.
func (s *ExportService) Reports(ctx context.Context, reports []models.Report) (string, error) {
	rows := [][]string{{"reportId", "orderId", "title", "status", "reportBy", "reporterId", "reportDate"}}
	for _, r := range reports {
		rows = append(rows, []string{
			strconv.FormatInt(r.ReportID, 10),
			strconv.FormatInt(r.OrderID, 10),
			r.Title,
			string(r.Status),
			string(r.ReportBy),
			strconv.FormatInt(r.ReporterID(), 10),
			stamp(r.ReportDate),
		})
	}
	return s.write(ctx, "reports", rows)
}

func (s *ExportService) write(ctx context.Context, kind string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("export: encode %s: %w", kind, err)
	}

	path := fmt.Sprintf("exports/%s-%s.csv", kind, s.now().Format("20060102-150405"))
	if err := s.disk.Put(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	logger.WithCtx(ctx).Info("export: written", "kind", kind, "rows", len(rows)-1, "path", path)
	return s.disk.URL(path), nil
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func stamp(t models.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(time.RFC3339)
}
