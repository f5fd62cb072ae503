package listing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kuman/app/listing"
	"github.com/shashiranjanraj/kuman/app/models"
)

func order(id int64, s models.Status) models.Order {
	return models.Order{OrderID: id, OrderStatus: s}
}

func ids(orders []models.Order) []int64 {
	out := make([]int64, len(orders))
	for i, o := range orders {
		out[i] = o.OrderID
	}
	return out
}

func TestSortOrders_FixedOrderAndStable(t *testing.T) {
	in := []models.Order{
		order(1, models.StatusCancelled),
		order(2, models.StatusInProgress),
		order(3, models.StatusWaitingAdmin),
		order(4, models.StatusInProgress),
		order(5, "Delivered"),
		order(6, models.StatusCompleted),
		order(7, models.StatusLookingForWalker),
		order(8, models.StatusWaitingAdmin),
	}
	got := listing.SortOrders(in)

	assert.Equal(t, []int64{3, 8, 2, 4, 7, 6, 1, 5}, ids(got))
	assert.Equal(t, int64(1), in[0].OrderID, "input untouched")
}

func TestSortOrders_Empty(t *testing.T) {
	got := listing.SortOrders(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_ResetAndIdempotent(t *testing.T) {
	base := []models.Report{
		{ReportID: 1, Title: "Cold food", Description: "soup was cold"},
		{ReportID: 2, Title: "Late", Description: "walker was LATE"},
		{ReportID: 3, Title: "Rude", Description: "bad manners"},
	}

	assert.Equal(t, base, listing.Search(base, "", listing.ReportTitle))

	once := listing.Search(base, "late", listing.ReportTitle, listing.ReportDescription)
	twice := listing.Search(once, "late", listing.ReportTitle, listing.ReportDescription)
	assert.Len(t, once, 1)
	assert.Equal(t, once, twice)

	byDesc := listing.Search(base, "COLD", listing.ReportDescription)
	assert.Len(t, byDesc, 1)
	assert.Equal(t, int64(1), byDesc[0].ReportID)
}

func TestSearch_LiteralSubstring(t *testing.T) {
	base := []models.Report{
		{ReportID: 1, Title: "Late"},
		{ReportID: 2, Title: "Very late"},
	}

	got := listing.Search(base, " late", listing.ReportTitle)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ReportID)

	assert.Empty(t, listing.Search(base, "late ", listing.ReportTitle))
}

func TestOrderFilter(t *testing.T) {
	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	base := []models.Order{
		{OrderID: 10, OrderStatus: models.StatusCompleted, CanteenID: 1, ShopID: 5, OrderDate: models.At(day)},
		{OrderID: 11, OrderStatus: models.StatusCancelled, CanteenID: 1, ShopID: 6, OrderDate: models.At(day)},
		{OrderID: 12, OrderStatus: models.StatusInProgress, CanteenID: 2, ShopID: 7, OrderDate: models.At(day.AddDate(0, 0, -1))},
		{OrderID: 110, OrderStatus: models.StatusCompleted, CanteenID: 2, ShopID: 7, OrderDate: models.At(day)},
	}

	cases := []struct {
		name   string
		filter listing.OrderFilter
		want   []int64
	}{
		{"unset", listing.OrderFilter{}, []int64{10, 11, 12, 110}},
		{"status OR", listing.OrderFilter{Statuses: []models.Status{models.StatusCompleted, models.StatusCancelled}}, []int64{10, 11, 110}},
		{"status AND canteen", listing.OrderFilter{Statuses: []models.Status{models.StatusCompleted}, CanteenID: 1}, []int64{10}},
		{"date", listing.OrderFilter{Date: day}, []int64{10, 11, 110}},
		{"shop", listing.OrderFilter{ShopID: 7}, []int64{12, 110}},
		{"query", listing.OrderFilter{Query: "11"}, []int64{11, 110}},
		{"no match", listing.OrderFilter{CanteenID: 9}, []int64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(tc.filter.Apply(base)))
		})
	}
}

func TestOrderFilter_ResetReturnsBase(t *testing.T) {
	base := []models.Order{order(1, models.StatusCompleted), order(2, models.StatusCancelled)}
	f := listing.OrderFilter{Statuses: []models.Status{models.StatusCancelled}, Query: "2"}
	assert.Len(t, f.Apply(base), 1)

	f.Reset()
	assert.True(t, f.IsZero())
	assert.Equal(t, base, f.Apply(base))
}

func TestOrderFilter_View(t *testing.T) {
	base := []models.Order{order(1, models.StatusCompleted), order(2, models.StatusWaitingAdmin), order(3, models.StatusCancelled)}
	f := listing.OrderFilter{Statuses: []models.Status{models.StatusCompleted, models.StatusWaitingAdmin}}
	assert.Equal(t, []int64{2, 1}, ids(f.View(base)))
}

func TestReportFilter(t *testing.T) {
	base := []models.Report{
		{ReportID: 1, Status: models.StatusWaitingAdmin, ReportBy: models.ReporterWalker, Title: "late"},
		{ReportID: 2, Status: models.StatusCompleted, ReportBy: models.ReporterRequester, Title: "cold"},
		{ReportID: 3, Status: models.StatusWaitingAdmin, ReportBy: models.ReporterRequester, Title: "late again"},
	}

	f := listing.ReportFilter{Reporters: []models.Reporter{models.ReporterRequester}, Query: "late"}
	got := f.Apply(base)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ReportID)

	f.Reset()
	assert.Equal(t, base, f.Apply(base))
	assert.Equal(t, []models.Report{}, listing.ReportFilter{Query: "x"}.Apply(nil))
}
