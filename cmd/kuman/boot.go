package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/shashiranjanraj/kuman/app/nav"
	"github.com/shashiranjanraj/kuman/app/repositories"
	"github.com/shashiranjanraj/kuman/app/services"
	"github.com/shashiranjanraj/kuman/config"
	"github.com/shashiranjanraj/kuman/pkg/cache"
	"github.com/shashiranjanraj/kuman/pkg/crypt"
	"github.com/shashiranjanraj/kuman/pkg/logger"
	"github.com/shashiranjanraj/kuman/pkg/reqid"
	"github.com/shashiranjanraj/kuman/pkg/session"
	"github.com/shashiranjanraj/kuman/pkg/storage"
	"github.com/shashiranjanraj/kuman/pkg/workerpool"
)

// console is everything one command invocation needs.
type console struct {
	sess *session.Manager
	flow *nav.Flow
	pool *workerpool.Pool

	orders   *repositories.OrderRepository
	reports  *repositories.ReportRepository
	users    *repositories.UserRepository
	verifies *repositories.VerifyRepository
	canteens *repositories.CanteenRepository
	admin    *repositories.AdminRepository

	auth    *services.AuthService
	verify  *services.VerifyService
	people  *services.UserService
	support *services.SupportService
	chat    *services.ChatService

	closers []func()
}

// commandContext is cancelled on SIGINT/SIGTERM and carries a request id
// that tags every log line and outgoing call of the invocation.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return reqid.Ensure(ctx), stop
}

// openStore picks the token store named by SESSION_DRIVER.
func openStore(ctx context.Context) (session.Store, func(), error) {
	switch config.SessionDriver() {
	case "redis":
		rc, err := cache.Connect(ctx)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(rc), func() { _ = rc.Close() }, nil
	case "memory":
		return session.NewMemoryStore(), func() {}, nil
	default:
		disk := storage.NewLocal(config.StorageLocalRoot())
		return session.NewDiskStore(disk, config.SessionPath(), crypt.New(config.AppKey())), func() {}, nil
	}
}

// boot restores the session and wires repositories and services.
func boot(ctx context.Context) (*console, error) {
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	sess := session.NewManager(store, nil, session.WithTimeout(config.InactivityTimeout()))
	if err := sess.Restore(ctx); err != nil {
		logger.WithCtx(ctx).Warn("session not restored", "error", err)
	}

	c := newConsole(sess, config.APIBaseURL(), config.ChatURL())
	c.closers = append([]func(){closeStore}, c.closers...)
	return c, nil
}

// newConsole wires repositories and services around an existing session.
func newConsole(sess *session.Manager, apiURL, chatURL string) *console {
	client := repositories.NewClient(apiURL, sess, config.HTTPTimeout())
	c := &console{
		sess:     sess,
		flow:     nav.New(sess),
		pool:     workerpool.New(config.FanoutWorkers()),
		orders:   repositories.NewOrderRepository(client),
		reports:  repositories.NewReportRepository(client),
		users:    repositories.NewUserRepository(client),
		verifies: repositories.NewVerifyRepository(client),
		canteens: repositories.NewCanteenRepository(client),
		admin:    repositories.NewAdminRepository(client),
		chat:     services.NewChatService(chatURL, sess),
	}
	c.auth = services.NewAuthService(c.admin, sess)
	c.verify = services.NewVerifyService(c.verifies)
	c.people = services.NewUserService(c.users, c.admin)
	c.support = services.NewSupportService(c.admin)
	c.closers = append(c.closers, c.pool.Shutdown)
	return c
}

func (c *console) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// open enters screen through the navigation flow and counts as input
// activity. Authenticated screens fail before any API call is made.
func (c *console) open(screen nav.Screen, params nav.Params) error {
	if err := c.flow.Go(screen, params); err != nil {
		if c.flow.State() == nav.Unauthenticated {
			return fmt.Errorf("%w (run `kuman login` first)", err)
		}
		return err
	}
	c.sess.Touch()
	return nil
}

func (c *console) dashboard() *services.Dashboard {
	return services.NewDashboard(services.DashboardDeps{
		Orders:   c.orders,
		Users:    c.users,
		Verify:   c.verifies,
		Canteens: c.canteens,
		Support:  c.support,
		Pool:     c.pool,
	})
}

// watchIdle runs the inactivity watchdog for long-lived interactive
// commands. The returned context ends when the session times out. The feed
// server has no input events and does not use it.
func (c *console) watchIdle(ctx context.Context) context.Context {
	if config.InactivityTimeout() <= 0 {
		return ctx
	}
	ctx, cancel := context.WithCancel(ctx)
	c.sess.Bus().Listen(session.EventLogout, func(p interface{}) {
		if t, ok := p.(session.Transition); ok && t.Cause == session.CauseTimeout {
			logger.WithCtx(ctx).Warn("session expired after inactivity")
		}
		cancel()
	})
	h := c.sess.Watch(ctx)
	c.closers = append(c.closers, func() { h.Stop(); cancel() })
	return ctx
}

// run boots a console for one command and tears it down afterwards.
func run(fn func(ctx context.Context, c *console) error) error {
	ctx, stop := commandContext()
	defer stop()

	c, err := boot(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}
