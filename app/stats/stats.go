// Package stats computes the dashboard's summary figures from fetched
// collections. All functions are pure and guard their denominators.
package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/pkg/collection"
	"github.com/shashiranjanraj/kuman/pkg/workerpool"
)

// Count evaluates every named predicate over items. Names with no match
// are present with zero.
func Count[T any](items []T, preds map[string]func(T) bool) map[string]int {
	out := make(map[string]int, len(preds))
	for name, pred := range preds {
		out[name] = collection.Count(items, pred)
	}
	return out
}

// Percent is round(100·part/total), or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

// ------------------- status tally -------------------

// StatusTally counts a collection by status. Unknown statuses are counted
// under their own name, so the counts always add up to Total.
type StatusTally struct {
	ByStatus map[models.Status]int `json:"byStatus"`
	Total    int                   `json:"total"`
}

// Tally counts items by the status returned by fn.
func Tally[T any](items []T, fn func(T) models.Status) StatusTally {
	by := collection.CountBy(items, fn)
	for _, s := range models.Statuses {
		if _, ok := by[s]; !ok {
			by[s] = 0
		}
	}
	return StatusTally{ByStatus: by, Total: len(items)}
}

// TallyOrders tallies orders by orderStatus.
func TallyOrders(orders []models.Order) StatusTally {
	return Tally(orders, func(o models.Order) models.Status { return o.OrderStatus })
}

// OnProcess is inProgress + lookingForWalker.
func (t StatusTally) OnProcess() int {
	return t.ByStatus[models.StatusInProgress] + t.ByStatus[models.StatusLookingForWalker]
}

// CompletedProcess is completed + cancelled.
func (t StatusTally) CompletedProcess() int {
	return t.ByStatus[models.StatusCompleted] + t.ByStatus[models.StatusCancelled]
}

func (t StatusTally) Percent(s models.Status) int { return Percent(t.ByStatus[s], t.Total) }

// ------------------- hourly activity -------------------

const (
	FirstHour = 6
	LastHour  = 18
	Buckets   = LastHour - FirstHour + 1
)

// Hourly is the daily activity graph. Index i covers hour FirstHour+i.
type Hourly struct {
	Walker    [Buckets]int `json:"walker"`
	Requester [Buckets]int `json:"requester"`
}

// HourlyActivity buckets orders by the local hour of orderDate. An order
// counts in the walker series when it has a walker and, independently, in
// the requester series when it has a requester. Hours outside the window
// are dropped.
func HourlyActivity(orders []models.Order) Hourly {
	var h Hourly
	for _, o := range orders {
		if o.OrderDate.IsZero() {
			continue
		}
		hour := o.OrderDate.Local().Hour()
		if hour < FirstHour || hour > LastHour {
			continue
		}
		i := hour - FirstHour
		if o.HasWalker() {
			h.Walker[i]++
		}
		if o.HasRequester() {
			h.Requester[i]++
		}
	}
	return h
}

// Labels returns "06:00".."18:00".
func (Hourly) Labels() []string {
	out := make([]string, Buckets)
	for i := range out {
		out[i] = fmt.Sprintf("%02d:00", FirstHour+i)
	}
	return out
}

// ------------------- new users -------------------

type NewUsers struct {
	Walkers    int `json:"walkers"`
	Requesters int `json:"requesters"`
}

// NewUsersOn counts accounts whose registration date is the local calendar
// day of day.
func NewUsersOn(day time.Time, walkers []models.Walker, requesters []models.Requester) NewUsers {
	return NewUsers{
		Walkers:    collection.Count(walkers, func(w models.Walker) bool { return w.RegisterAt.SameDay(day) }),
		Requesters: collection.Count(requesters, func(r models.Requester) bool { return r.RegisterAt.SameDay(day) }),
	}
}

// ------------------- income -------------------

type Income struct {
	Revenue     float64 `json:"revenue"`
	ShippingFee float64 `json:"shippingFee"`
	Orders      int     `json:"orders"`
}

// IncomeOf sums totalPrice and shippingFee over completed orders.
func IncomeOf(orders []models.Order) Income {
	done := collection.Filter(orders, func(o models.Order) bool { return o.OrderStatus == models.StatusCompleted })
	return Income{
		Revenue:     collection.Sum(done, func(o models.Order) float64 { return o.TotalPrice }),
		ShippingFee: collection.Sum(done, func(o models.Order) float64 { return o.ShippingFee }),
		Orders:      len(done),
	}
}

// ------------------- open shops -------------------

type ShopRatio struct {
	Open  int `json:"open"`
	Total int `json:"total"`
}

// Ratio is Open/Total, or 0 when there are no shops.
func (r ShopRatio) Ratio() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Open) / float64(r.Total)
}

func (r ShopRatio) Percent() int { return Percent(r.Open, r.Total) }

// ShopLister fetches the shops of one canteen.
type ShopLister func(ctx context.Context, canteenID int64) ([]models.Shop, error)

// OpenShops fetches every canteen's shop list concurrently on pool and
// waits for all of them. Any failed fetch fails the aggregate.
func OpenShops(ctx context.Context, pool *workerpool.Pool, canteens []models.Canteen, list ShopLister) (ShopRatio, error) {
	results := make([][]models.Shop, len(canteens))
	tasks := make([]func(context.Context) error, len(canteens))
	for i, c := range canteens {
		i, c := i, c
		tasks[i] = func(ctx context.Context) error {
			shops, err := list(ctx, c.CanteenID)
			if err != nil {
				return fmt.Errorf("stats: shops of canteen %d: %w", c.CanteenID, err)
			}
			results[i] = shops
			return nil
		}
	}
	if err := pool.All(ctx, tasks...); err != nil {
		return ShopRatio{}, err
	}

	all := collection.Flatten(results)
	return ShopRatio{
		Open:  collection.Count(all, func(s models.Shop) bool { return s.Status }),
		Total: len(all),
	}, nil
}
