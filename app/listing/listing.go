// Package listing derives the displayed order of a fetched collection: a
// stable status-priority sort, free-text search and structured filters.
//
// Every function is a pure view over its input. An empty query or a reset
// filter yields the base collection unchanged, and a nil base yields an
// empty (non-nil) slice.
package listing

import (
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/pkg/collection"
)

// SortByStatus orders items by status priority, keeping the input order of
// equal-priority items.
func SortByStatus[T any](items []T, status func(T) models.Status) []T {
	return collection.SortStableBy(items, func(a, b T) bool {
		return status(a).Priority() < status(b).Priority()
	})
}

func SortOrders(orders []models.Order) []models.Order {
	return SortByStatus(orders, func(o models.Order) models.Status { return o.OrderStatus })
}

func SortReports(reports []models.Report) []models.Report {
	return SortByStatus(reports, func(r models.Report) models.Status { return r.Status })
}

// Search keeps items where query is a case-insensitive substring of any of
// the given fields. The query is matched as typed, surrounding spaces
// included; only the empty query resets.
func Search[T any](items []T, query string, fields ...func(T) string) []T {
	q := strings.ToLower(query)
	if q == "" {
		return collection.Clone(items)
	}
	return collection.Filter(items, func(it T) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(it)), q) {
				return true
			}
		}
		return false
	})
}

// OrderID is the search field of the orders list.
func OrderID(o models.Order) string { return strconv.FormatInt(o.OrderID, 10) }

func ReportTitle(r models.Report) string       { return r.Title }
func ReportDescription(r models.Report) string { return r.Description }

func anyOf[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ------------------- orders -------------------

// OrderFilter narrows the orders list. Zero-valued fields are unset and
// impose nothing; set fields are ANDed, and Statuses matches any listed
// status.
type OrderFilter struct {
	Query     string
	Statuses  []models.Status
	Date      time.Time
	CanteenID int64
	ShopID    int64
}

// IsZero reports whether no field is set.
func (f OrderFilter) IsZero() bool {
	return f.Query == "" && len(f.Statuses) == 0 &&
		f.Date.IsZero() && f.CanteenID == 0 && f.ShopID == 0
}

func (f *OrderFilter) Reset() { *f = OrderFilter{} }

// Match reports whether o passes every set field.
func (f OrderFilter) Match(o models.Order) bool {
	if len(f.Statuses) > 0 && !anyOf(f.Statuses, o.OrderStatus) {
		return false
	}
	if !f.Date.IsZero() && !o.OrderDate.SameDay(f.Date) {
		return false
	}
	if f.CanteenID != 0 && o.CanteenID != f.CanteenID {
		return false
	}
	if f.ShopID != 0 && o.ShopID != f.ShopID {
		return false
	}
	return true
}

// Apply filters orders without sorting.
func (f OrderFilter) Apply(orders []models.Order) []models.Order {
	out := Search(orders, f.Query, OrderID)
	if f.IsZero() {
		return out
	}
	return collection.Filter(out, f.Match)
}

// View is Apply followed by SortOrders.
func (f OrderFilter) View(orders []models.Order) []models.Order {
	return SortOrders(f.Apply(orders))
}

// ------------------- reports -------------------

// ReportFilter narrows the reports list with the same semantics as
// OrderFilter.
type ReportFilter struct {
	Query     string
	Statuses  []models.Status
	Reporters []models.Reporter
	Date      time.Time
}

func (f ReportFilter) IsZero() bool {
	return f.Query == "" && len(f.Statuses) == 0 &&
		len(f.Reporters) == 0 && f.Date.IsZero()
}

func (f *ReportFilter) Reset() { *f = ReportFilter{} }

func (f ReportFilter) Match(r models.Report) bool {
	if len(f.Statuses) > 0 && !anyOf(f.Statuses, r.Status) {
		return false
	}
	if len(f.Reporters) > 0 && !anyOf(f.Reporters, r.ReportBy) {
		return false
	}
	if !f.Date.IsZero() && !r.ReportDate.SameDay(f.Date) {
		return false
	}
	return true
}

func (f ReportFilter) Apply(reports []models.Report) []models.Report {
	out := Search(reports, f.Query, ReportTitle, ReportDescription)
	if f.IsZero() {
		return out
	}
	return collection.Filter(out, f.Match)
}

func (f ReportFilter) View(reports []models.Report) []models.Report {
	return SortReports(f.Apply(reports))
}
