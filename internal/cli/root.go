// Package cli is the slotwise command line.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alexanderramin/slotwise/internal/app"
	"github.com/alexanderramin/slotwise/internal/cli/formatter"
	"github.com/alexanderramin/slotwise/internal/config"
	"github.com/alexanderramin/slotwise/internal/logging"
)

// Builder wires the use cases once flags and configuration are known.
type Builder func(cfg *config.Config, logger *slog.Logger, opts app.Options) (*app.App, error)

// flagKeys binds command-line flags to config keys.
var flagKeys = map[string]string{
	"timezone":            "timezone",
	"db.path":             "db",
	"log.level":           "log-level",
	"log.format":          "log-format",
	"server.addr":         "addr",
	"server.cors_origins": "cors-origin",
}

// state is shared by every command of one root.
type state struct {
	build     Builder
	v         *viper.Viper
	cfgFile   string
	noHistory bool
	format    string

	cfg    *config.Config
	logger *slog.Logger
	app    *app.App
}

func (s *state) init(cmd *cobra.Command) error {
	if err := checkFormat(s.format); err != nil {
		return err
	}
	if err := config.BindFlags(s.v, cmd.Flags(), flagKeys); err != nil {
		return err
	}
	cfg, err := config.Load(s.v, s.cfgFile)
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.logger = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	formatter.SetColor(isTerminal(cmd.ErrOrStderr()))
	return nil
}

// App builds the use cases on first use.
func (s *state) App() (*app.App, error) {
	if s.app != nil {
		return s.app, nil
	}
	a, err := s.build(s.cfg, s.logger, app.Options{NoHistory: s.noHistory})
	if err != nil {
		return nil, err
	}
	s.app = a
	return a, nil
}

func (s *state) close() error {
	if s.app == nil {
		return nil
	}
	return s.app.Close()
}

// NewRootCmd creates the top-level "slotwise" command. A nil build uses
// app.Build.
func NewRootCmd(build Builder) *cobra.Command {
	if build == nil {
		build = app.Build
	}
	st := &state{build: build, v: config.New()}
	var flags scheduleFlags

	root := &cobra.Command{
		Use:   "slotwise [input]",
		Short: "Heuristic task scheduler and planning assistant",
		Long: `slotwise scores tasks, fits them into free calendar time, inserts
breaks and plans habits. With no subcommand it schedules the request read
from the input file or stdin.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.init(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return st.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && isTerminal(cmd.InOrStdin()) {
				return cmd.Help()
			}
			return runSchedule(cmd, st, args, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&st.cfgFile, "config", "", "config file (default "+config.File()+")")
	pf.String("timezone", "", "default IANA timezone for requests without one")
	pf.String("db", "", "run history database path")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.StringVar(&st.format, "format", formatJSON, "output format: json or yaml")
	pf.BoolVar(&st.noHistory, "no-history", false, "do not store or read schedule runs")
	flags.register(root.Flags())

	root.AddCommand(
		newScheduleCmd(st),
		newChatCmd(st),
		newServeCmd(st),
		newHistoryCmd(st),
		newDeepBlockCmd(st),
		newSnoozeCmd(st),
		newTagCmd(st),
		newDeadlineCmd(st),
		newCalendarCmd(st),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd(nil)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		printError(root.ErrOrStderr(), err)
		return 1
	}
	return 0
}
