package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/app/nav"
	"github.com/shashiranjanraj/kuman/app/services"
	"github.com/shashiranjanraj/kuman/config"
	"github.com/shashiranjanraj/kuman/internal/kernel"
	"github.com/shashiranjanraj/kuman/internal/server"
	"github.com/shashiranjanraj/kuman/pkg/logger"
	"github.com/shashiranjanraj/kuman/pkg/storage"
)

var (
	watchFlag bool
	addrFlag  string
	diskFlag  string
)

// kuman dashboard [--watch]
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the overview figures",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Dashboard, nil); err != nil {
				return err
			}
			d := c.dashboard()
			if !watchFlag {
				return printSnapshot(d.Refresh(ctx))
			}

			ctx = c.watchIdle(ctx)
			interval := config.PollInterval()
			stop := d.Watch(ctx, interval)
			defer stop()

			tick := time.NewTicker(interval)
			defer tick.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-tick.C:
					if snap := d.Snapshot(); snap.Loaded {
						fmt.Print("\033[H\033[2J")
						if err := printSnapshot(snap); err != nil {
							return err
						}
					}
				}
			}
		})
	},
}

func printSnapshot(s services.Snapshot) error {
	return emit(s, func() error {
		if !s.Loaded {
			fmt.Println("Dashboard not loaded.")
		}
		fmt.Printf("Orders        %d total   %d on process (%d%%)   %d completed (%d%%)\n",
			s.Orders.Total, s.OnProcess, s.OnProcessPct, s.CompletedProcess, s.CompletedPct)

		rows := make([][]string, 0, len(models.Statuses))
		for _, st := range models.Statuses {
			rows = append(rows, []string{string(st), fmt.Sprint(s.Orders.ByStatus[st]), fmt.Sprintf("%d%%", s.Orders.Percent(st))})
		}
		if err := table(os.Stdout, []string{"STATUS", "COUNT", "SHARE"}, rows); err != nil {
			return err
		}

		fmt.Printf("\nIncome        %s (+ shipping %s)\n", money(s.Income.Revenue), money(s.Income.ShippingFee))
		fmt.Printf("Today         %d orders\n", s.TodayOrders)
		fmt.Printf("New users     %d walkers, %d requesters\n", s.NewUsers.Walkers, s.NewUsers.Requesters)
		fmt.Printf("Open shops    %d / %d (%d%%)\n", s.OpenShops.Open, s.OpenShops.Total, s.OpenShopPct)
		fmt.Printf("Support       %d open conversations\n", s.SupportRequests)
		fmt.Printf("Verification  %d walkers waiting\n\n", s.PendingVerify)

		labels := s.Hourly.Labels()
		hours := make([][]string, 0, len(labels))
		for i, l := range labels {
			hours = append(hours, []string{l, fmt.Sprint(s.Hourly.Walker[i]), fmt.Sprint(s.Hourly.Requester[i])})
		}
		if err := table(os.Stdout, []string{"HOUR", "WALKER", "REQUESTER"}, hours); err != nil {
			return err
		}

		if len(s.Errors) > 0 {
			names := make([]string, 0, len(s.Errors))
			for n := range s.Errors {
				names = append(names, n)
			}
			sort.Strings(names)
			fmt.Println()
			for _, n := range names {
				fmt.Fprintf(os.Stderr, "! %s: %s\n", n, s.Errors[n])
			}
		}
		if !s.UpdatedAt.IsZero() {
			fmt.Printf("\nUpdated %s\n", s.UpdatedAt.Local().Format("15:04:05"))
		}
		return nil
	})
}

// kuman serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the dashboard and serve it as JSON and SSE",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Dashboard, nil); err != nil {
				return err
			}
			addr := addrFlag
			if addr == "" {
				addr = ":" + config.AppPort()
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("serve: listen %s: %w", addr, err)
			}
			return c.serveFeed(ctx, ln)
		})
	},
}

// serveFeed polls the dashboard and serves it on ln until ctx ends. Feed
// requests are not admin input, so the inactivity watchdog stays off and
// the session outlives INACTIVITY_TIMEOUT.
func (c *console) serveFeed(ctx context.Context, ln net.Listener) error {
	d := c.dashboard()
	stop := d.Watch(ctx, config.PollInterval())
	defer stop()

	k := kernel.NewHTTPKernel(d)
	for name, path := range k.Routes() {
		logger.Debug("route", "name", name, "path", path)
	}
	return server.Serve(ctx, ln, k.Handler())
}

// kuman export orders|reports
var exportCmd = &cobra.Command{
	Use:       "export <orders|reports>",
	Short:     "Write a filtered listing as CSV to a storage disk",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"orders", "reports"},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := diskFlag
		if name == "" {
			name = config.StorageDefault()
		}
		disk, err := storage.Open(name)
		if err != nil {
			return err
		}
		exp := services.NewExportService(disk)

		return run(func(ctx context.Context, c *console) error {
			var loc string
			switch strings.ToLower(args[0]) {
			case "orders":
				f, err := orderFilter()
				if err != nil {
					return err
				}
				if err := c.open(nav.Orders, nil); err != nil {
					return err
				}
				orders, err := c.orders.All(ctx)
				if err != nil {
					return err
				}
				if loc, err = exp.Orders(ctx, f.View(orders)); err != nil {
					return err
				}
			case "reports":
				f, err := reportFilter()
				if err != nil {
					return err
				}
				if err := c.open(nav.Reports, nil); err != nil {
					return err
				}
				reports, err := c.reports.All(ctx)
				if err != nil {
					return err
				}
				if loc, err = exp.Reports(ctx, f.View(reports)); err != nil {
					return err
				}
			}
			fmt.Println(loc)
			return nil
		})
	},
}

func init() {
	dashboardCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Keep polling and redraw")
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (default :APP_PORT)")

	exportCmd.Flags().StringVar(&diskFlag, "disk", "", "local|s3 (default STORAGE_DISK)")
	exportCmd.Flags().StringVarP(&searchFlag, "search", "q", "", "Search text")
	exportCmd.Flags().StringSliceVar(&statusFlags, "status", nil, "Keep these statuses")
	exportCmd.Flags().StringVar(&dateFlag, "date", "", "Keep one day, YYYY-MM-DD or \"today\"")
	exportCmd.Flags().Int64Var(&canteenFlag, "canteen", 0, "Orders: keep one canteen id")
	exportCmd.Flags().Int64Var(&shopFlag, "shop", 0, "Orders: keep one shop id")
	exportCmd.Flags().StringSliceVar(&reporterFlag, "by", nil, "Reports: requester|walker (repeatable)")
}
