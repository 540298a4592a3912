package auth

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"animehub/internal/cli/session"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	Long:  "Create a new AnimeHub account with name, email, and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")

		if name == "" {
			fmt.Print("Name: ")
			fmt.Scanln(&name)
		}
		if email == "" {
			fmt.Print("Email: ")
			fmt.Scanln(&email)
		}

		fmt.Print("Password: ")
		password, _ := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()

		fmt.Print("Confirm password: ")
		confirm, _ := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()

		if string(password) != string(confirm) {
			return fmt.Errorf("passwords do not match")
		}

		api := session.NewClient()
		resp, err := api.Register(cmd.Context(), name, email, string(password))
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		path, err := session.Save(resp)
		if err != nil {
			return err
		}

		fmt.Println("✓ Account created successfully!")
		fmt.Printf("  Name: %s\n", resp.User.Name)
		fmt.Printf("  Email: %s\n", resp.User.Email)
		fmt.Printf("  Token saved to: %s\n", path)
		return nil
	},
}

func init() {
	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().String("email", "", "Email address")
	AuthCmd.AddCommand(registerCmd)
}
