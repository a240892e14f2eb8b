package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medquiz/medquiz/internal/progress"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the signed-in user's data as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		entry, err := a.requireUser()
		if err != nil {
			return err
		}

		data, err := a.progress.Export(entry.ID)
		if err != nil {
			return err
		}
		raw, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}

		if len(args) == 0 {
			fmt.Println(string(raw))
			return nil
		}
		if err := os.WriteFile(args[0], raw, 0o644); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a previously exported user backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var data progress.ExportData
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parse backup: %w", err)
		}
		if err := a.progress.Import(data); err != nil {
			return err
		}
		fmt.Printf("Imported user %s\n", data.UserData.UserID)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe all stored users and progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to wipe without --yes")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.progress.ClearAll(); err != nil {
			return err
		}
		fmt.Println("All data cleared")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm wiping all data")
}
