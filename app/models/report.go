package models

// Reporter is who filed a report.
type Reporter string

const (
	ReporterRequester Reporter = "requester"
	ReporterWalker    Reporter = "walker"
)

// Report is a complaint filed against an order.
type Report struct {
	ReportID    int64     `json:"reportId"`
	OrderID     int64     `json:"orderId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	ReportBy    Reporter  `json:"reportBy"`
	RequesterID int64     `json:"requesterId,omitempty"`
	WalkerID    int64     `json:"walkerId,omitempty"`
	ReportDate  Timestamp `json:"reportDate"`
}

// ReporterID returns the id of whoever filed the report.
func (r Report) ReporterID() int64 {
	if r.ReportBy == ReporterWalker {
		return r.WalkerID
	}
	return r.RequesterID
}
