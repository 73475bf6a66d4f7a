package cmd

import (
	"github.com/spf13/cobra"

	"github.com/omergehad405/EduMaster/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()
	return app.Run(e.deps())
}
