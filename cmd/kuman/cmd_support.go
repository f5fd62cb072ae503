package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/app/nav"
)

var (
	chatUserFlag int64
	chatRoleFlag string
	chatFromFlag string
)

var supportCmd = &cobra.Command{
	Use:   "support",
	Short: "Support conversations",
}

// kuman support list
var supportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open conversations from requesters and walkers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.open(nav.Support, nil); err != nil {
				return err
			}
			reqs, err := c.support.Requests(ctx)
			if err != nil {
				return err
			}
			return emit(reqs, func() error {
				rows := make([][]string, 0, len(reqs))
				for _, r := range reqs {
					rows = append(rows, []string{string(r.Role), itoa(r.UserID), orDash(r.Username), itoa(r.OrderID), orDash(r.Message), when(r.At)})
				}
				return table(os.Stdout, []string{"ROLE", "USER", "NAME", "ORDER", "LAST MESSAGE", "AT"}, rows)
			})
		})
	},
}

// kuman chat <orderId> --user <id> --role <requester|walker>
var chatCmd = &cobra.Command{
	Use:   "chat <orderId>",
	Short: "Chat with a requester or walker about an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			params := nav.Params{
				nav.ParamOrderID: args[0],
				nav.ParamUserID:  itoa(chatUserFlag),
				nav.ParamRole:    chatRoleFlag,
			}
			if chatUserFlag <= 0 {
				delete(params, nav.ParamUserID)
			}
			if err := c.open(nav.Chat, params); err != nil {
				return err
			}
			orderID, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx = c.watchIdle(ctx)
			join := models.JoinRequest{UserID: chatUserFlag, Role: models.Role(chatRoleFlag), OrderID: orderID}
			conv, err := c.chat.Open(ctx, join, chatFromFlag)
			if err != nil {
				return err
			}
			defer conv.Close()

			conv.OnMessage(func(m models.ChatMessage) {
				if m.Role == models.RoleAdmin || m.FromUser == chatFromFlag {
					return
				}
				fmt.Printf("%s (%s): %s\n", orDash(m.FromUser), m.Role, m.Message)
			})
			fmt.Fprintf(os.Stderr, "Connected to order #%d. Type a message and press enter; Ctrl-D to leave.\n", orderID)

			lines := make(chan string)
			go func() {
				defer close(lines)
				sc := bufio.NewScanner(os.Stdin)
				for sc.Scan() {
					lines <- sc.Text()
				}
			}()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-conv.Done():
					if ctx.Err() != nil {
						return nil
					}
					if err := conv.Err(); err != nil {
						return err
					}
					return errors.New("chat closed by server")
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					line = strings.TrimSpace(line)
					if line == "" {
						continue
					}
					c.sess.Touch()
					if err := conv.Send(line); err != nil {
						return err
					}
				}
			}
		})
	},
}

func init() {
	chatCmd.Flags().Int64Var(&chatUserFlag, "user", 0, "Requester or walker id")
	chatCmd.Flags().StringVar(&chatRoleFlag, "role", "", "requester|walker")
	chatCmd.Flags().StringVar(&chatFromFlag, "as", "admin", "Name shown on outgoing messages")
	_ = chatCmd.MarkFlagRequired("user")
	_ = chatCmd.MarkFlagRequired("role")

	supportCmd.AddCommand(supportListCmd)
}
