package services

import (
	"context"
	"sync"
	"time"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/app/repositories"
	"github.com/shashiranjanraj/kuman/app/stats"
	"github.com/shashiranjanraj/kuman/pkg/poll"
	"github.com/shashiranjanraj/kuman/pkg/schedule"
	"github.com/shashiranjanraj/kuman/pkg/workerpool"
)

// Snapshot is everything the dashboard screen shows, derived from the
// latest successful fetch of each source.
type Snapshot struct {
	Orders           stats.StatusTally `json:"orders"`
	OnProcess        int               `json:"onProcess"`
	CompletedProcess int               `json:"completedProcess"`
	OnProcessPct     int               `json:"onProcessPercent"`
	CompletedPct     int               `json:"completedProcessPercent"`
	Income           stats.Income      `json:"income"`
	TodayOrders      int               `json:"todayOrders"`
	Hourly           stats.Hourly      `json:"hourly"`
	NewUsers         stats.NewUsers    `json:"newUsers"`
	OpenShops        stats.ShopRatio   `json:"openShops"`
	OpenShopPct      int               `json:"openShopPercent"`
	SupportRequests  int               `json:"supportRequests"`
	PendingVerify    int               `json:"pendingVerification"`
	Loaded           bool              `json:"loaded"`
	Errors           map[string]string `json:"errors,omitempty"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// DashboardDeps are the sources of the dashboard.
type DashboardDeps struct {
	Orders   *repositories.OrderRepository
	Users    *repositories.UserRepository
	Verify   *repositories.VerifyRepository
	Canteens *repositories.CanteenRepository
	Support  *SupportService
	Pool     *workerpool.Pool
	Now      func() time.Time
}

// Dashboard owns one fetcher per source.
type Dashboard struct {
	orders     *poll.Fetcher[[]models.Order]
	today      *poll.Fetcher[[]models.Order]
	support    *poll.Fetcher[[]models.SupportRequest]
	verify     *poll.Fetcher[[]models.VerificationCandidate]
	walkers    *poll.Fetcher[[]models.Walker]
	requesters *poll.Fetcher[[]models.Requester]
	shops      *poll.Fetcher[stats.ShopRatio]

	now  func() time.Time
	subs []func(func())
}

func NewDashboard(d DashboardDeps) *Dashboard {
	if d.Now == nil {
		d.Now = time.Now
	}
	db := &Dashboard{
		orders:     poll.New("dashboard.orders", poll.NewSlot[[]models.Order](), d.Orders.All),
		today:      poll.New("dashboard.today", poll.NewSlot[[]models.Order](), d.Orders.Today),
		support:    poll.New("dashboard.support", poll.NewSlot[[]models.SupportRequest](), d.Support.Requests),
		verify:     poll.New("dashboard.verify", poll.NewSlot[[]models.VerificationCandidate](), d.Verify.Pending),
		walkers:    poll.New("dashboard.walkers", poll.NewSlot[[]models.Walker](), d.Users.AllWalkers),
		requesters: poll.New("dashboard.requesters", poll.NewSlot[[]models.Requester](), d.Users.Requesters),
		shops: poll.New("dashboard.shops", poll.NewSlot[stats.ShopRatio](), func(ctx context.Context) (stats.ShopRatio, error) {
			canteens, err := d.Canteens.Canteens(ctx)
			if err != nil {
				return stats.ShopRatio{}, err
			}
			return stats.OpenShops(ctx, d.Pool, canteens, d.Canteens.Shops)
		}),
		now: d.Now,
	}
	db.subs = []func(func()){
		watchSlot(db.orders.Slot()),
		watchSlot(db.today.Slot()),
		watchSlot(db.support.Slot()),
		watchSlot(db.verify.Slot()),
		watchSlot(db.walkers.Slot()),
		watchSlot(db.requesters.Slot()),
		watchSlot(db.shops.Slot()),
	}
	return db
}

// watchSlot adapts a typed slot to a settled-change callback.
func watchSlot[T any](s *poll.Slot[T]) func(func()) {
	return func(fn func()) {
		s.Subscribe(func(st poll.State[T]) {
			if !st.Loading {
				fn()
			}
		})
	}
}

// Refresh fetches every source once, concurrently, and returns the result.
func (d *Dashboard) Refresh(ctx context.Context) Snapshot {
	var wg sync.WaitGroup
	for _, once := range []func(context.Context){
		func(ctx context.Context) { d.orders.Once(ctx) },
		func(ctx context.Context) { d.today.Once(ctx) },
		func(ctx context.Context) { d.support.Once(ctx) },
		func(ctx context.Context) { d.verify.Once(ctx) },
		func(ctx context.Context) { d.walkers.Once(ctx) },
		func(ctx context.Context) { d.requesters.Once(ctx) },
		func(ctx context.Context) { d.shops.Once(ctx) },
	} {
		wg.Add(1)
		go func(f func(context.Context)) {
			defer wg.Done()
			f(ctx)
		}(once)
	}
	wg.Wait()
	return d.Snapshot()
}

// Watch polls every source each interval until ctx is cancelled. The
// returned stop function cancels all pollers and waits for them.
func (d *Dashboard) Watch(ctx context.Context, interval time.Duration) (stop func()) {
	handles := []*schedule.Handle{
		d.orders.Poll(ctx, interval),
		d.today.Poll(ctx, interval),
		d.support.Poll(ctx, interval),
		d.verify.Poll(ctx, interval),
		d.walkers.Poll(ctx, interval),
		d.requesters.Poll(ctx, interval),
		d.shops.Poll(ctx, interval),
	}
	return func() {
		for _, h := range handles {
			h.Stop()
		}
	}
}

// OnUpdate calls fn with a fresh snapshot whenever any source settles.
func (d *Dashboard) OnUpdate(fn func(Snapshot)) {
	for _, sub := range d.subs {
		sub(func() { fn(d.Snapshot()) })
	}
}

// Snapshot derives the dashboard figures from the current slot states.
func (d *Dashboard) Snapshot() Snapshot {
	orders := d.orders.Slot().Get()
	today := d.today.Slot().Get()
	support := d.support.Slot().Get()
	verify := d.verify.Slot().Get()
	walkers := d.walkers.Slot().Get()
	requesters := d.requesters.Slot().Get()
	shops := d.shops.Slot().Get()

	tally := stats.TallyOrders(orders.Data)
	snap := Snapshot{
		Orders:           tally,
		OnProcess:        tally.OnProcess(),
		CompletedProcess: tally.CompletedProcess(),
		OnProcessPct:     stats.Percent(tally.OnProcess(), tally.Total),
		CompletedPct:     stats.Percent(tally.CompletedProcess(), tally.Total),
		Income:           stats.IncomeOf(orders.Data),
		TodayOrders:      len(today.Data),
		Hourly:           stats.HourlyActivity(today.Data),
		NewUsers:         stats.NewUsersOn(d.now(), walkers.Data, requesters.Data),
		OpenShops:        shops.Data,
		OpenShopPct:      shops.Data.Percent(),
		SupportRequests:  len(support.Data),
		PendingVerify:    len(verify.Data),
		Loaded:           orders.Loaded,
	}

	errs := map[string]string{}
	note := func(name string, err error) {
		if err != nil {
			errs[name] = err.Error()
		}
	}
	note("orders", orders.Err)
	note("today", today.Err)
	note("support", support.Err)
	note("verify", verify.Err)
	note("walkers", walkers.Err)
	note("requesters", requesters.Err)
	note("shops", shops.Err)
	if len(errs) > 0 {
		snap.Errors = errs
	}

	for _, t := range []time.Time{orders.UpdatedAt, today.UpdatedAt, support.UpdatedAt, verify.UpdatedAt,
		walkers.UpdatedAt, requesters.UpdatedAt, shops.UpdatedAt} {
		if t.After(snap.UpdatedAt) {
			snap.UpdatedAt = t
		}
	}
	return snap
}
