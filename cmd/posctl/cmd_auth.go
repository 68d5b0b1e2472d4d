package main

import (
	"errors"
	"fmt"

	"go-pos-ws/pkg/posclient"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

// posctl login
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginEmail == "" || loginPassword == "" {
			return errors.New("--email and --password are required")
		}
		client := newClient()
		res, err := client.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}
		if err := saveToken(res.Token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		fmt.Printf("Signed in as %s\n", res.User.Email)
		return nil
	},
}

// posctl logout
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the session on every device and forget the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := newClient().Logout(cmd.Context())
		clearToken()
		if err != nil && !posclient.IsUnauthorized(err) {
			return err
		}
		fmt.Println("Signed out")
		return nil
	},
}

// posctl whoami
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user, role and permissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		user, err := client.Session(cmd.Context())
		if err != nil {
			if posclient.IsUnauthorized(err) {
				return errors.New("not signed in, run: posctl login")
			}
			return err
		}
		fmt.Printf("%s <%s>\n", user.FullName, user.Email)

		ms, err := client.Membership(cmd.Context())
		if err != nil {
			if posclient.IsForbidden(err) {
				fmt.Println("No active workspace membership")
				return nil
			}
			return err
		}
		fmt.Printf("Role: %s\n", ms.RoleLabel)
		for _, p := range ms.Permissions {
			fmt.Printf("  %s\n", p)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
}
