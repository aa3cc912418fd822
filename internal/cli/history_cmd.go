package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/slotwise/internal/app"
	"github.com/alexanderramin/slotwise/internal/cli/formatter"
	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/repository"
	"github.com/alexanderramin/slotwise/internal/service"
)

func newHistoryCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect stored schedule runs",
	}
	cmd.AddCommand(newHistoryListCmd(st), newHistoryShowCmd(st))
	return cmd
}

func newHistoryListCmd(st *state) *cobra.Command {
	var limit int
	var pretty bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := historyApp(st)
			if err != nil {
				return err
			}
			runs, err := a.History.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if pretty {
				fmt.Fprint(cmd.ErrOrStderr(), formatter.FormatRuns(runs))
			}
			return st.writeResult(cmd, "", runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", repository.DefaultListLimit, "maximum number of runs")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "render the runs as a table on stderr")
	return cmd
}

func newHistoryShowCmd(st *state) *cobra.Command {
	var request bool

	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Print a stored response (the latest when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := historyApp(st)
			if err != nil {
				return err
			}
			var run *domain.ScheduleRun
			if id := firstArg(args); id != "" {
				run, err = a.History.Get(cmd.Context(), id)
			} else {
				run, err = a.History.Latest(cmd.Context())
			}
			if err != nil {
				return err
			}

			raw := run.ResponseJSON
			if request {
				raw = run.RequestJSON
			}
			out, err := renderJSON(st.format, raw)
			if err != nil {
				return fmt.Errorf("decoding stored run %s: %w", run.ID, err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&request, "request", false, "print the stored request instead of the response")
	return cmd
}

// historyApp returns the app when run storage is enabled.
func historyApp(st *state) (*app.App, error) {
	a, err := st.App()
	if err != nil {
		return nil, err
	}
	if a.History == nil {
		return nil, service.ErrRunStoreDisabled
	}
	return a, nil
}
