package repositories

import (
	"context"

	"github.com/shashiranjanraj/kuman/app/models"
)

// ReportQuery is the server-side search of /admin/report/search. Empty
// fields are not sent.
type ReportQuery struct {
	Keyword  string
	Status   models.Status
	ReportBy models.Reporter
}

type ReportRepository struct {
	c *Client
}

func NewReportRepository(c *Client) *ReportRepository {
	return &ReportRepository{c: c}
}

func (r *ReportRepository) All(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	err := fetch(r.c.get(ctx, "reports", "/admin/report"), &reports)
	return reports, err
}

func (r *ReportRepository) Search(ctx context.Context, q ReportQuery) ([]models.Report, error) {
	var reports []models.Report
	req := r.c.get(ctx, "reports.search", "/admin/report/search").
		Query("keyword", q.Keyword).
		Query("status", string(q.Status)).
		Query("reportBy", string(q.ReportBy))
	err := fetch(req, &reports)
	return reports, err
}

// Find returns one report. The backend has no detail endpoint, so the list
// is fetched and filtered.
func (r *ReportRepository) Find(ctx context.Context, reportID int64) (models.Report, error) {
	reports, err := r.All(ctx)
	if err != nil {
		return models.Report{}, err
	}
	for _, rep := range reports {
		if rep.ReportID == reportID {
			return rep, nil
		}
	}
	return models.Report{}, ErrNotFound
}
