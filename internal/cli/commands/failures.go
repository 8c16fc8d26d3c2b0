package commands

import (
	"github.com/spf13/cobra"

	"fwtest/internal/storage"
	"fwtest/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	session *Session
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(session *Session) *FailuresCommand {
	return &FailuresCommand{session: session}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	st := storage.NewJSONStorage(fc.session.Config.SummaryPath())
	results, err := st.Load()
	if err != nil {
		return err
	}

	var viewer ui.Viewer = ui.NewFailureViewer(st, fc.session.Logger)
	return viewer.View(results)
}
