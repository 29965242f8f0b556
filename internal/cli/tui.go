package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"periodic-table-service/internal/app"
	"periodic-table-service/internal/surface"
	"periodic-table-service/internal/transport/tui"
)

// NewTUICmd builds the subcommand hosting the controller in the terminal.
func NewTUICmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and quiz the periodic table in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(*configPath)
		},
	}
}

func runTUI(configPath string) error {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	// the terminal is the display; keep log output off it
	log := zap.NewNop()

	_, doc, err := loadDocument(cfg)
	if err != nil {
		return err
	}
	state := surface.NewState(doc)
	ctrl, err := app.NewController(state, controllerOptions(cfg, log)...)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	_, err = tea.NewProgram(tui.New(ctrl, state), tea.WithAltScreen()).Run()
	return err
}
