package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/slotwise/internal/calendar"
	"github.com/alexanderramin/slotwise/internal/cli/formatter"
	"github.com/alexanderramin/slotwise/internal/contract"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

func newCalendarCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Read free time from and authorize Google Calendar",
	}
	cmd.AddCommand(newCalendarSlotsCmd(st), newCalendarAuthCmd(st))
	return cmd
}

// slotsOutput is shaped to be pasted into a schedule request.
type slotsOutput struct {
	Timezone     string               `json:"timezone"`
	CalendarFree []contract.SlotInput `json:"calendar_free"`
}

func newCalendarSlotsCmd(st *state) *cobra.Command {
	var date string
	var days int
	var pretty bool

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print free working-hours slots as calendar_free JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1, got %d", days)
			}
			loc := st.cfg.Location()
			from := time.Now().In(loc)
			if date != "" {
				d, err := timeutil.Parse(date, loc)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				from = d
			}
			from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
			to := from.AddDate(0, 0, days)

			a, err := st.App()
			if err != nil {
				return err
			}
			cal, err := a.Calendar(cmd.Context())
			if err != nil {
				return err
			}
			slots, err := cal.FreeSlots(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			out := slotsOutput{Timezone: loc.String(), CalendarFree: make([]contract.SlotInput, 0, len(slots))}
			rows := make([][]string, 0, len(slots))
			for _, s := range slots {
				out.CalendarFree = append(out.CalendarFree, contract.SlotInput{
					StartISO: timeutil.Format(s.Start),
					EndISO:   timeutil.Format(s.End),
				})
				rows = append(rows, []string{
					s.Start.Format("Mon 15:04"),
					s.End.Format("15:04"),
					formatter.Minutes(s.Minutes()),
				})
			}
			if pretty {
				fmt.Fprint(cmd.ErrOrStderr(), formatter.RenderTable([]string{"FROM", "TO", "FREE"}, rows))
			}
			return st.writeResult(cmd, "", out)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "first day to read, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&days, "days", 1, "number of days to read")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "render the slots as a table on stderr")
	return cmd
}

func newCalendarAuthCmd(st *state) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize slotwise to read and write your calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := st.cfg.Calendar
			oauthCfg, err := calendar.LoadOAuthConfig(c.CredentialsFile)
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			if code == "" {
				fmt.Fprintf(stderr, "Open this link and approve access:\n\n  %s\n\n", calendar.AuthURL(oauthCfg, uuid.NewString()))
				if code, err = readAuthCode(cmd); err != nil {
					return err
				}
			}
			if _, err := calendar.Exchange(ctx, oauthCfg, code, c.TokenFile); err != nil {
				return err
			}
			fmt.Fprintf(stderr, "Token saved to %s\n", c.TokenFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "authorization code, skipping the prompt")
	return cmd
}

func readAuthCode(cmd *cobra.Command) (string, error) {
	if isTerminal(cmd.InOrStdin()) {
		return promptLine(cmd.Context(), cmd, "Authorization code", "")
	}
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("reading authorization code: %w", err)
		}
		return "", fmt.Errorf("no authorization code on stdin")
	}
	return strings.TrimSpace(sc.Text()), nil
}
