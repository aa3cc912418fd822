package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/slotwise/internal/app"
	"github.com/alexanderramin/slotwise/internal/cli/formatter"
	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/service"
)

// latestRun names the most recent stored run in --run.
const latestRun = "latest"

type featureFlags struct {
	runID  string
	output string
	pretty bool
}

func (f *featureFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.runID, "run", "", `stored run to work on, or "latest" (default when no input is given)`)
	fs.StringVarP(&f.output, "output", "o", "", "write the response to this file instead of stdout")
	fs.BoolVar(&f.pretty, "pretty", false, "render the result on stderr")
}

// loadFeatureRequest reads a request from the input file or piped stdin,
// or targets a stored run when neither is given.
func loadFeatureRequest(cmd *cobra.Command, st *state, args []string, flags featureFlags) (*contract.FeatureRequest, *app.App, error) {
	a, err := st.App()
	if err != nil {
		return nil, nil, err
	}

	req := &contract.FeatureRequest{}
	fromInput := len(args) == 1 || (flags.runID == "" && !isTerminal(cmd.InOrStdin()))
	if fromInput {
		data, err := readInput(cmd, firstArg(args))
		if err != nil {
			return nil, nil, err
		}
		if req, err = contract.DecodeFeatureRequest(data); err != nil {
			return nil, nil, err
		}
	} else {
		req.RunID = latestRun
	}
	if flags.runID != "" {
		req.RunID = flags.runID
	}

	if req.RunID == latestRun {
		if a.History == nil {
			return nil, nil, service.ErrRunStoreDisabled
		}
		run, err := a.History.Latest(cmd.Context())
		if err != nil {
			return nil, nil, fmt.Errorf("finding latest run: %w", err)
		}
		req.RunID = run.ID
	}
	return req, a, nil
}

func emitFeature(cmd *cobra.Command, st *state, flags featureFlags, name string, head contract.FeatureHead, tasks []contract.TaskView, resp any) error {
	if flags.pretty {
		fmt.Fprint(cmd.ErrOrStderr(), formatter.FormatFeature(name, head, tasks))
	}
	return st.writeResult(cmd, flags.output, resp)
}

func newDeepBlockCmd(st *state) *cobra.Command {
	var flags featureFlags
	var minutes int

	cmd := &cobra.Command{
		Use:   "deep-block [input]",
		Short: "Reserve a focus block for tasks that need deep work",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, a, err := loadFeatureRequest(cmd, st, args, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("minutes") {
				req.DurationMinutes = contract.NewNumber(float64(minutes))
			}
			resp, err := a.Features.DeepBlock(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emitFeature(cmd, st, flags, "Deep block", resp.FeatureHead, resp.ScheduleUpdates, resp)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().IntVar(&minutes, "minutes", 0, "block length in minutes")
	return cmd
}

func newSnoozeCmd(st *state) *cobra.Command {
	var flags featureFlags
	var taskID string
	var minutes, hours float64

	cmd := &cobra.Command{
		Use:   "snooze [input]",
		Short: "Push a task and the work related to it later",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, a, err := loadFeatureRequest(cmd, st, args, flags)
			if err != nil {
				return err
			}
			if taskID != "" {
				req.TaskID = taskID
			}
			if cmd.Flags().Changed("minutes") {
				req.SnoozeMinutes = contract.NewNumber(minutes)
			}
			if cmd.Flags().Changed("hours") {
				req.Hours = contract.NewNumber(hours)
			}
			resp, err := a.Features.Snooze(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emitFeature(cmd, st, flags, "Snooze", resp.FeatureHead, resp.ScheduleUpdates, resp)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&taskID, "task", "", "id of the task to snooze")
	cmd.Flags().Float64Var(&minutes, "minutes", 0, "snooze length in minutes")
	cmd.Flags().Float64Var(&hours, "hours", 0, "snooze length in hours (wins over --minutes)")
	return cmd
}

func newTagCmd(st *state) *cobra.Command {
	var flags featureFlags
	var tags []string
	var auto bool

	cmd := &cobra.Command{
		Use:   "tag [input]",
		Short: "Tag tasks explicitly or from their descriptions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, a, err := loadFeatureRequest(cmd, st, args, flags)
			if err != nil {
				return err
			}
			req.Tags = append(req.Tags, tags...)
			if cmd.Flags().Changed("auto") {
				req.AutoDetect = &auto
			}
			resp, err := a.Features.Tags(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emitFeature(cmd, st, flags, "Tags", resp.FeatureHead, resp.TaggedTasks, resp)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag to apply to every task (repeatable)")
	cmd.Flags().BoolVar(&auto, "auto", true, "detect tags from descriptions when none are given")
	return cmd
}

func newDeadlineCmd(st *state) *cobra.Command {
	var flags featureFlags
	var taskID, deadline string

	cmd := &cobra.Command{
		Use:   "deadline [input]",
		Short: "Check a deadline against available time and draft an extension email",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, a, err := loadFeatureRequest(cmd, st, args, flags)
			if err != nil {
				return err
			}
			if taskID != "" {
				req.TaskID = taskID
			}
			if deadline != "" {
				req.NewDeadline = deadline
			}
			resp, err := a.Features.Deadline(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emitFeature(cmd, st, flags, "Deadline", resp.FeatureHead, nil, resp)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&taskID, "task", "", "id of the task to negotiate")
	cmd.Flags().StringVar(&deadline, "deadline", "", "requested deadline (ISO-8601)")
	return cmd
}
