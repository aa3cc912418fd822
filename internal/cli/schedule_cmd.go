package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/slotwise/internal/cli/formatter"
	"github.com/alexanderramin/slotwise/internal/contract"
)

type scheduleFlags struct {
	output         string
	pretty         bool
	exportCalendar bool
}

func (f *scheduleFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.output, "output", "o", "", "write the response to this file instead of stdout")
	fs.BoolVar(&f.pretty, "pretty", false, "render the schedule as a table on stderr")
	fs.BoolVar(&f.exportCalendar, "export-calendar", false, "insert placed entries into Google Calendar")
}

func newScheduleCmd(st *state) *cobra.Command {
	var flags scheduleFlags
	cmd := &cobra.Command{
		Use:   "schedule [input]",
		Short: "Prioritize, group and place tasks into free time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, st, args, flags)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func runSchedule(cmd *cobra.Command, st *state, args []string, flags scheduleFlags) error {
	data, err := readInput(cmd, firstArg(args))
	if err != nil {
		return err
	}
	req, err := contract.DecodeScheduleRequest(data)
	if err != nil {
		return err
	}
	a, err := st.App()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	res, err := a.Schedule.Process(ctx, req)
	if err != nil {
		return err
	}
	if err := st.writeResult(cmd, flags.output, res.Response); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Validation: %s\n", res.Response.ValidationSummary)
	if res.RunID != "" {
		fmt.Fprintln(stderr, formatter.Dim("Run "+res.RunID+" saved."))
	}
	if flags.pretty {
		fmt.Fprint(stderr, formatter.FormatSchedule(res.Response))
	}

	if !flags.exportCalendar {
		return nil
	}
	cal, err := a.Calendar(ctx)
	if err != nil {
		return fmt.Errorf("exporting to calendar: %w", err)
	}
	n, err := cal.ExportSchedule(ctx, res.Entries)
	if err != nil {
		return fmt.Errorf("exporting to calendar: %w", err)
	}
	fmt.Fprintf(stderr, "Exported %d entries to calendar.\n", n)
	return nil
}
