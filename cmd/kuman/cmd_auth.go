package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/app/nav"
)

var (
	usernameFlag string
	passwordFlag string
)

// kuman login
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the admin token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if c.flow.State() == nav.Authenticated {
				if err := c.auth.Logout(ctx); err != nil {
					return err
				}
			}
			if err := c.open(nav.Login, nil); err != nil {
				return err
			}

			creds := models.Credentials{Username: usernameFlag, Password: passwordFlag}
			in := bufio.NewReader(os.Stdin)
			if creds.Username == "" {
				creds.Username = prompt(in, "Username: ")
			}
			if creds.Password == "" {
				creds.Password = prompt(in, "Password: ")
			}

			if err := c.auth.Login(ctx, creds); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Println("Logged in.")
			return nil
		})
	},
}

// kuman logout
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored admin token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			if err := c.auth.Logout(ctx); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		})
	},
}

// kuman whoami
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the claims of the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, c *console) error {
			claims, err := c.auth.Whoami()
			if err != nil {
				return err
			}
			return emit(claims, func() error {
				fmt.Println("Admin:   ", claims.DisplayName())
				fmt.Println("Role:    ", orDash(claims.Role))
				if exp, ok := claims.Expiry(); ok {
					state := "valid"
					if claims.Expired(time.Now()) {
						state = "expired"
					}
					fmt.Printf("Expires:  %s (%s)\n", exp.Local().Format(time.RFC1123), state)
				}
				return nil
			})
		})
	},
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Fprint(os.Stderr, label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func init() {
	loginCmd.Flags().StringVarP(&usernameFlag, "username", "u", "", "Admin username")
	loginCmd.Flags().StringVarP(&passwordFlag, "password", "p", "", "Admin password (prompted when empty)")
}
