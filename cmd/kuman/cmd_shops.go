package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kuman/app/nav"
)

func openState(open bool) string {
	if open {
		return "open"
	}
	return "closed"
}

var canteensCmd = &cobra.Command{
	Use:   "canteens",
	Short: "Food courts",
}

var canteensListCmd = &cobra.Command{
	Use:   "list",
	Short: "List canteens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Canteens, nil); err != nil {
				return err
			}
			cs, err := c.canteens.Canteens(ctx)
			if err != nil {
				return err
			}
			return emit(cs, func() error {
				rows := make([][]string, 0, len(cs))
				for _, ct := range cs {
					rows = append(rows, []string{itoa(ct.CanteenID), ct.Name})
				}
				return table(os.Stdout, []string{"ID", "NAME"}, rows)
			})
		})
	},
}

var shopsCmd = &cobra.Command{
	Use:   "shops",
	Short: "Vendors inside canteens",
}

// kuman shops list <canteenId>
var shopsListCmd = &cobra.Command{
	Use:   "list <canteenId>",
	Short: "List the shops of a canteen",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Shops, nav.Params{nav.ParamCanteenID: args[0]}); err != nil {
				return err
			}
			id, err := c.flow.Current().Params.Int(nav.ParamCanteenID)
			if err != nil {
				return err
			}
			shops, err := c.canteens.Shops(ctx, id)
			if err != nil {
				return err
			}
			return emit(shops, func() error {
				rows := make([][]string, 0, len(shops))
				for _, s := range shops {
					rows = append(rows, []string{itoa(s.ShopID), s.Name, openState(s.Status)})
				}
				return table(os.Stdout, []string{"ID", "NAME", "STATE"}, rows)
			})
		})
	},
}

// kuman shops show <shopId>
var shopsShowCmd = &cobra.Command{
	Use:   "show <shopId>",
	Short: "Show shop details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.ShopDetail, nav.Params{nav.ParamShopID: args[0]}); err != nil {
				return err
			}
			id, err := c.flow.Current().Params.Int(nav.ParamShopID)
			if err != nil {
				return err
			}
			info, err := c.canteens.ShopInfo(ctx, id)
			if err != nil {
				return err
			}
			return emit(info, func() error {
				fmt.Printf("Shop #%d  %s  (%s)\n", info.ShopID, info.Name, openState(info.Status))
				fmt.Printf("Owner: %s %s\n", orDash(info.OwnerName), info.PhoneNumber)
				if info.Description != "" {
					fmt.Printf("\n%s\n", info.Description)
				}
				return nil
			})
		})
	},
}

// kuman shops menu <shopId>
var shopsMenuCmd = &cobra.Command{
	Use:   "menu <shopId>",
	Short: "List the dishes of a shop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.ShopMenu, nav.Params{nav.ParamShopID: args[0]}); err != nil {
				return err
			}
			id, err := c.flow.Current().Params.Int(nav.ParamShopID)
			if err != nil {
				return err
			}
			menu, err := c.canteens.Menu(ctx, id)
			if err != nil {
				return err
			}
			return emit(menu, func() error {
				rows := make([][]string, 0, len(menu))
				for _, m := range menu {
					avail := "available"
					if !m.Status {
						avail = "sold out"
					}
					rows = append(rows, []string{itoa(m.MenuID), m.Name, money(m.Price), avail})
				}
				return table(os.Stdout, []string{"ID", "DISH", "PRICE", "STATE"}, rows)
			})
		})
	},
}

// kuman shops orders <shopId> [orderId]
var shopsOrdersCmd = &cobra.Command{
	Use:   "orders <shopId> [orderId]",
	Short: "List a shop's orders, or show one of them",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if len(args) == 2 {
				params := nav.Params{nav.ParamShopID: args[0], nav.ParamOrderID: args[1]}
				if err := c.open(nav.ShopOrderDetail, params); err != nil {
					return err
				}
				id, err := c.flow.Current().Params.Int(nav.ParamOrderID)
				if err != nil {
					return err
				}
				return showOrder(ctx, c, id)
			}

			if err := c.open(nav.ShopOrders, nav.Params{nav.ParamShopID: args[0]}); err != nil {
				return err
			}
			id, err := c.flow.Current().Params.Int(nav.ParamShopID)
			if err != nil {
				return err
			}
			orders, err := c.orders.ByShop(ctx, id)
			if err != nil {
				return err
			}
			f, err := orderFilter()
			if err != nil {
				return err
			}
			return printOrders(f.View(orders))
		})
	},
}

func init() {
	canteensCmd.AddCommand(canteensListCmd)

	shopsOrdersCmd.Flags().StringVarP(&searchFlag, "search", "q", "", "Search text")
	shopsOrdersCmd.Flags().StringSliceVar(&statusFlags, "status", nil, "Keep these statuses")
	shopsCmd.AddCommand(shopsListCmd, shopsShowCmd, shopsMenuCmd, shopsOrdersCmd)
}
