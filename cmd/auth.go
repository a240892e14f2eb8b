package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <username> <email> <password>",
	Short: "Register a new user and sign in",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		entry, err := a.auth.Register(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("Registered and signed in as %s <%s>\n", entry.Username, entry.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Sign in as an existing user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		entry, err := a.auth.Login(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s <%s>\n", entry.Username, entry.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out the active user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.auth.Logout(); err != nil {
			return err
		}
		fmt.Println("Signed out")
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile <new-username>",
	Short: "Change the signed-in user's display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.requireUser(); err != nil {
			return err
		}
		if err := a.auth.UpdateProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("Username changed to %s\n", args[0])
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		users, err := a.progress.ListUsers()
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users registered")
			return nil
		}

		activeID, _, _ := a.progress.ActiveUser()
		for _, u := range users {
			marker := " "
			if u.ID == activeID {
				marker = "*"
			}
			fmt.Printf("%s %-20s %-30s last login %s\n",
				marker, u.Username, u.Email, u.LastLogin.Format("2006-01-02 15:04"))
		}
		return nil
	},
}
