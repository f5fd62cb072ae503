package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/app/nav"
)

var (
	allFlag     bool
	toFlag      string
	subjectFlag string
	messageFlag string
)

// ─── verify ───────────────────────────────────────────────────────────────────

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Review walkers waiting for verification",
}

var verifyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List walkers waiting for approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Verify, nil); err != nil {
				return err
			}
			cs, err := c.verify.Pending(ctx)
			if err != nil {
				return err
			}
			return emit(cs, func() error {
				rows := make([][]string, 0, len(cs))
				for _, v := range cs {
					rows = append(rows, []string{itoa(v.WalkerID), v.Username, orDash(v.Email), orDash(v.PhoneNumber), orDash(v.BankAccountNo), when(v.RegisterAt)})
				}
				return table(os.Stdout, []string{"WALKER", "USERNAME", "EMAIL", "PHONE", "BANK ACCOUNT", "REGISTERED"}, rows)
			})
		})
	},
}

// decisionCmd builds `verify approve` and `verify reject`.
func decisionCmd(use string, approve bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <walkerId>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a walker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, c *console) error {
				if err := c.open(nav.VerifyDetail, nav.Params{nav.ParamWalkerID: args[0]}); err != nil {
					return err
				}
				id, err := c.flow.Current().Params.Int(nav.ParamWalkerID)
				if err != nil {
					return err
				}
				decide, done := c.verify.Reject, "rejected"
				if approve {
					decide, done = c.verify.Approve, "approved"
				}
				if err := decide(ctx, id); err != nil {
					return err
				}
				fmt.Printf("Walker #%d %s.\n", id, done)
				return nil
			})
		},
	}
}

// ─── users ────────────────────────────────────────────────────────────────────

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Walker and requester accounts",
}

var usersWalkersCmd = &cobra.Command{
	Use:   "walkers",
	Short: "List walkers (verified only unless --all)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Walkers, nil); err != nil {
				return err
			}
			ws, err := c.people.Walkers(ctx, allFlag)
			if err != nil {
				return err
			}
			return emit(ws, func() error {
				rows := make([][]string, 0, len(ws))
				for _, w := range ws {
					rows = append(rows, []string{itoa(w.WalkerID), w.Username, orDash(w.Email), orDash(w.PhoneNumber), fmt.Sprint(w.Verified), when(w.RegisterAt)})
				}
				return table(os.Stdout, []string{"ID", "USERNAME", "EMAIL", "PHONE", "VERIFIED", "REGISTERED"}, rows)
			})
		})
	},
}

var usersRequestersCmd = &cobra.Command{
	Use:   "requesters",
	Short: "List requesters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Requesters, nil); err != nil {
				return err
			}
			rs, err := c.people.Requesters(ctx)
			if err != nil {
				return err
			}
			return emit(rs, func() error {
				rows := make([][]string, 0, len(rs))
				for _, r := range rs {
					rows = append(rows, []string{itoa(r.RequesterID), r.Username, orDash(r.Email), orDash(r.PhoneNumber), when(r.RegisterAt)})
				}
				return table(os.Stdout, []string{"ID", "USERNAME", "EMAIL", "PHONE", "REGISTERED"}, rows)
			})
		})
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <userId>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.UserDetail, nav.Params{nav.ParamUserID: args[0]}); err != nil {
				return err
			}
			id, err := c.flow.Current().Params.Int(nav.ParamUserID)
			if err != nil {
				return err
			}
			if err := c.people.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Printf("User #%d deleted.\n", id)
			return nil
		})
	},
}

// ─── email ────────────────────────────────────────────────────────────────────

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Mail users",
}

// kuman email send --to a@b --subject s [--message m | stdin]
var emailSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an email through the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		msg := messageFlag
		if msg == "" {
			b, err := io.ReadAll(bufio.NewReader(os.Stdin))
			if err != nil {
				return err
			}
			msg = strings.TrimSpace(string(b))
		}
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Email, nil); err != nil {
				return err
			}
			if err := c.people.SendEmail(ctx, models.Email{Email: toFlag, Subject: subjectFlag, Message: msg}); err != nil {
				return err
			}
			fmt.Println("Sent.")
			return nil
		})
	},
}

func init() {
	verifyCmd.AddCommand(verifyListCmd, decisionCmd("approve", true), decisionCmd("reject", false))

	usersWalkersCmd.Flags().BoolVar(&allFlag, "all", false, "Include unverified walkers")
	usersCmd.AddCommand(usersWalkersCmd, usersRequestersCmd, usersDeleteCmd)

	emailSendCmd.Flags().StringVar(&toFlag, "to", "", "Recipient address")
	emailSendCmd.Flags().StringVar(&subjectFlag, "subject", "", "Subject line")
	emailSendCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Body (read from stdin when empty)")
	emailCmd.AddCommand(emailSendCmd)
}
