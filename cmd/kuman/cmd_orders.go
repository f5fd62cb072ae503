package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kuman/app/listing"
	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/app/nav"
	"github.com/shashiranjanraj/kuman/app/repositories"
)

var (
	searchFlag   string
	statusFlags  []string
	dateFlag     string
	canteenFlag  int64
	shopFlag     int64
	reporterFlag []string
)

func orderFilter() (listing.OrderFilter, error) {
	statuses, err := parseStatuses(statusFlags)
	if err != nil {
		return listing.OrderFilter{}, err
	}
	day, err := parseDay(dateFlag)
	if err != nil {
		return listing.OrderFilter{}, err
	}
	return listing.OrderFilter{
		Query:     searchFlag,
		Statuses:  statuses,
		Date:      day,
		CanteenID: canteenFlag,
		ShopID:    shopFlag,
	}, nil
}

func reportFilter() (listing.ReportFilter, error) {
	statuses, err := parseStatuses(statusFlags)
	if err != nil {
		return listing.ReportFilter{}, err
	}
	by, err := parseReporters(reporterFlag)
	if err != nil {
		return listing.ReportFilter{}, err
	}
	day, err := parseDay(dateFlag)
	if err != nil {
		return listing.ReportFilter{}, err
	}
	return listing.ReportFilter{Query: searchFlag, Statuses: statuses, Reporters: by, Date: day}, nil
}

func printOrders(orders []models.Order) error {
	return emit(orders, func() error { return table(os.Stdout, orderHeader, orderRows(orders)) })
}

func printReports(reports []models.Report) error {
	return emit(reports, func() error { return table(os.Stdout, reportHeader, reportRows(reports)) })
}

// ─── orders ───────────────────────────────────────────────────────────────────

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Browse delivery orders",
}

// kuman orders list
var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders, filtered and sorted by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := orderFilter()
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Orders, nil); err != nil {
				return err
			}
			orders, err := c.orders.All(ctx)
			if err != nil {
				return err
			}
			return printOrders(f.View(orders))
		})
	},
}

// kuman orders today
var ordersTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List today's orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Orders, nil); err != nil {
				return err
			}
			orders, err := c.orders.Today(ctx)
			if err != nil {
				return err
			}
			return printOrders(listing.SortOrders(orders))
		})
	},
}

// kuman orders show <orderId>
var ordersShowCmd = &cobra.Command{
	Use:   "show <orderId>",
	Short: "Show one order with its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.OrderDetail, nav.Params{nav.ParamOrderID: args[0]}); err != nil {
				return err
			}
			id, err := c.flow.Current().Params.Int(nav.ParamOrderID)
			if err != nil {
				return err
			}
			return showOrder(ctx, c, id)
		})
	},
}

func showOrder(ctx context.Context, c *console, id int64) error {
	order, err := c.orders.Info(ctx, id)
	if err != nil {
		return err
	}
	items, err := c.orders.Detail(ctx, id)
	if err != nil {
		return err
	}

	view := struct {
		models.Order
		Items []models.OrderItem `json:"items"`
	}{order, items}
	return emit(view, func() error {
		fmt.Printf("Order #%d  %s\n", order.OrderID, order.OrderStatus)
		fmt.Printf("Requester: %s %s\n", orDash(order.Requester.Username), order.Requester.PhoneNumber)
		fmt.Printf("Walker:    %s %s\n", orDash(order.Walker.Username), order.Walker.PhoneNumber)
		fmt.Printf("Canteen:   %s\n", orDash(order.Canteen))
		fmt.Printf("Address:   %s\n", orDash(order.Address))
		fmt.Printf("Date:      %s\n\n", when(order.OrderDate))

		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{it.Name, fmt.Sprint(it.Quantity), money(it.Price), orDash(it.Note)})
		}
		if err := table(os.Stdout, []string{"ITEM", "QTY", "PRICE", "NOTE"}, rows); err != nil {
			return err
		}
		fmt.Printf("\nShipping %s   Total %s\n", money(order.ShippingFee), money(order.TotalPrice))
		return nil
	})
}

// ─── reports ──────────────────────────────────────────────────────────────────

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse complaints filed against orders",
}

// kuman reports list
var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports, filtered and sorted by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := reportFilter()
		if err != nil {
			return err
		}
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Reports, nil); err != nil {
				return err
			}
			reports, err := c.reports.All(ctx)
			if err != nil {
				return err
			}
			return printReports(f.View(reports))
		})
	},
}

// kuman reports search <keyword>
var reportsSearchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search reports on the server",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := repositories.ReportQuery{}
		if len(args) == 1 {
			q.Keyword = args[0]
		}
		if len(statusFlags) > 0 {
			st, err := parseStatuses(statusFlags[:1])
			if err != nil {
				return err
			}
			q.Status = st[0]
		}
		if len(reporterFlag) > 0 {
			by, err := parseReporters(reporterFlag[:1])
			if err != nil {
				return err
			}
			q.ReportBy = by[0]
		}
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Reports, nil); err != nil {
				return err
			}
			reports, err := c.reports.Search(ctx, q)
			if err != nil {
				return err
			}
			return printReports(listing.SortReports(reports))
		})
	},
}

// kuman reports show <reportId>
var reportsShowCmd = &cobra.Command{
	Use:   "show <reportId>",
	Short: "Show one report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.ReportDetail, nav.Params{nav.ParamReportID: args[0]}); err != nil {
				return err
			}
			id, err := c.flow.Current().Params.Int(nav.ParamReportID)
			if err != nil {
				return err
			}
			r, err := c.reports.Find(ctx, id)
			if err != nil {
				return err
			}
			return emit(r, func() error {
				fmt.Printf("Report #%d on order #%d  %s\n", r.ReportID, r.OrderID, r.Status)
				fmt.Printf("By:    %s #%d\n", r.ReportBy, r.ReporterID())
				fmt.Printf("Date:  %s\n", when(r.ReportDate))
				fmt.Printf("Title: %s\n\n%s\n", r.Title, r.Description)
				return nil
			})
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{ordersListCmd, reportsListCmd} {
		cmd.Flags().StringVarP(&searchFlag, "search", "q", "", "Search text")
		cmd.Flags().StringSliceVar(&statusFlags, "status", nil, "Keep these statuses (repeatable)")
		cmd.Flags().StringVar(&dateFlag, "date", "", "Keep one day, YYYY-MM-DD or \"today\"")
	}
	ordersListCmd.Flags().Int64Var(&canteenFlag, "canteen", 0, "Keep one canteen id")
	ordersListCmd.Flags().Int64Var(&shopFlag, "shop", 0, "Keep one shop id")
	reportsListCmd.Flags().StringSliceVar(&reporterFlag, "by", nil, "requester|walker (repeatable)")
	reportsSearchCmd.Flags().StringSliceVar(&statusFlags, "status", nil, "Server-side status filter")
	reportsSearchCmd.Flags().StringSliceVar(&reporterFlag, "by", nil, "Server-side reporter filter")

	ordersCmd.AddCommand(ordersListCmd, ordersTodayCmd, ordersShowCmd)
	reportsCmd.AddCommand(reportsListCmd, reportsSearchCmd, reportsShowCmd)
}
