package auth

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"animehub/internal/cli/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to AnimeHub",
	Long:  "Authenticate with your email and password to access AnimeHub services",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")

		if email == "" {
			fmt.Print("Email: ")
			fmt.Scanln(&email)
		}

		fmt.Print("Password: ")
		password, _ := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()

		api := session.NewClient()
		resp, err := api.Login(cmd.Context(), email, string(password))
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		path, err := session.Save(resp)
		if err != nil {
			return err
		}

		fmt.Println("✓ Login successful!")
		fmt.Printf("  Welcome back, %s!\n", resp.User.Name)
		fmt.Printf("  Token saved to: %s\n", path)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Email address")
	AuthCmd.AddCommand(loginCmd)
}
