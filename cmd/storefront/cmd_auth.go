package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentfashion/storefront/internal/session"
)

var (
	authEmail    string
	authPassword string
	authFullname string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	Long: `Sign in with email and password. When --password is omitted it is read
from the first line of stdin.`,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		storefront.Session.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		current, ok := storefront.Session.Current()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		u := current.User
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\nid:   %s\nrole: %s\n", u.Fullname, u.Email, u.ID, u.Role)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "account password (read from stdin when empty)")
		_ = c.MarkFlagRequired("email")
	}
	registerCmd.Flags().StringVar(&authFullname, "name", "", "full name")
	_ = registerCmd.MarkFlagRequired("name")
}

func readPassword(cmd *cobra.Command) (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	if !storefront.Session.Login(cmd.Context(), authEmail, password) {
		return fmt.Errorf("%s", storefront.Session.ErrorMessage())
	}
	return printWelcome(cmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	ok := storefront.Session.Register(cmd.Context(), session.RegisterInput{
		Fullname: authFullname,
		Email:    authEmail,
		Password: password,
	})
	if !ok {
		return fmt.Errorf("%s", storefront.Session.ErrorMessage())
	}
	return printWelcome(cmd)
}

func printWelcome(cmd *cobra.Command) error {
	current, _ := storefront.Session.Current()
	snap := storefront.Cart.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s. Your cart has %d item(s).\n", current.User.Fullname, snap.TotalCount)
	return nil
}

func requireSession(cmd *cobra.Command) (session.Session, error) {
	current, ok := storefront.Session.Current()
	if !ok {
		return session.Session{}, fmt.Errorf("not signed in; run `storefront login` first")
	}
	return current, nil
}
