package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/logging"
	"github.com/alexanderramin/slotwise/internal/timeutil"
)

// taskIDProperty tags exported events with the task they came from.
const taskIDProperty = "slotwise_task_id"

// Workday bounds the hours that count as free time, in the client's zone.
type Workday struct {
	StartHour int
	EndHour   int
}

func DefaultWorkday() Workday {
	return Workday{StartHour: 9, EndHour: 17}
}

// Client is a Google Calendar collaborator for one calendar.
type Client struct {
	srv        *gcal.Service
	calendarID string
	workday    Workday
	loc        *time.Location
	logger     *slog.Logger
}

func NewClient(srv *gcal.Service, calendarID string, workday Workday, loc *time.Location, logger *slog.Logger) *Client {
	if calendarID == "" {
		calendarID = "primary"
	}
	if workday.EndHour <= workday.StartHour {
		workday = DefaultWorkday()
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{srv: srv, calendarID: calendarID, workday: workday, loc: loc, logger: logger}
}

// FreeSlots asks the calendar for busy periods in [from, to) and returns
// the working-hours gaps between them.
func (c *Client) FreeSlots(ctx context.Context, from, to time.Time) ([]domain.FreeSlot, error) {
	resp, err := c.srv.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin:  timeutil.Format(from),
		TimeMax:  timeutil.Format(to),
		TimeZone: c.loc.String(),
		Items:    []*gcal.FreeBusyRequestItem{{Id: c.calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("querying free/busy: %w", err)
	}

	cal, ok := resp.Calendars[c.calendarID]
	if !ok {
		return nil, fmt.Errorf("calendar %s missing from free/busy response", c.calendarID)
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("calendar %s: %s", c.calendarID, cal.Errors[0].Reason)
	}

	busy := make([]timeutil.Interval, 0, len(cal.Busy))
	for _, p := range cal.Busy {
		start, err := timeutil.Parse(p.Start, c.loc)
		if err != nil {
			return nil, fmt.Errorf("busy start: %w", err)
		}
		end, err := timeutil.Parse(p.End, c.loc)
		if err != nil {
			return nil, fmt.Errorf("busy end: %w", err)
		}
		busy = append(busy, timeutil.Interval{Start: start, End: end})
	}
	slots := InvertBusy(from.In(c.loc), to.In(c.loc), busy, c.workday)
	c.logger.DebugContext(ctx, "calendar free slots", "busy", len(busy), "free", len(slots))
	return slots, nil
}

// InvertBusy returns the free time in [from, to) that falls inside the
// workday on each day and outside every busy interval. Busy intervals may
// overlap and arrive in any order.
func InvertBusy(from, to time.Time, busy []timeutil.Interval, wd Workday) []domain.FreeSlot {
	sorted := append([]timeutil.Interval(nil), busy...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	var slots []domain.FreeSlot
	loc := from.Location()
	y, m, d := from.Date()
	for day := time.Date(y, m, d, 0, 0, 0, 0, loc); day.Before(to); day = day.AddDate(0, 0, 1) {
		start := later(from, day.Add(time.Duration(wd.StartHour)*time.Hour))
		end := earlier(to, day.Add(time.Duration(wd.EndHour)*time.Hour))
		if !start.Before(end) {
			continue
		}

		cursor := start
		for _, b := range sorted {
			if !b.End.After(cursor) || !b.Start.Before(end) {
				continue
			}
			if b.Start.After(cursor) {
				slots = append(slots, domain.FreeSlot{Start: cursor, End: b.Start})
			}
			cursor = later(cursor, b.End)
			if !cursor.Before(end) {
				break
			}
		}
		if cursor.Before(end) {
			slots = append(slots, domain.FreeSlot{Start: cursor, End: end})
		}
	}
	return slots
}

// ExportSchedule inserts every placed entry as an event and returns how
// many were written. Unplaced entries are skipped.
func (c *Client) ExportSchedule(ctx context.Context, entries []domain.ScheduleEntry) (int, error) {
	written := 0
	for _, e := range entries {
		iv, ok := e.Interval()
		if !ok {
			continue
		}
		ev := &gcal.Event{
			Summary:     e.Task.Description,
			Description: e.Task.Justification,
			Start:       &gcal.EventDateTime{DateTime: timeutil.Format(iv.Start)},
			End:         &gcal.EventDateTime{DateTime: timeutil.Format(iv.End)},
			ExtendedProperties: &gcal.EventExtendedProperties{
				Private: map[string]string{taskIDProperty: e.Task.ID},
			},
		}
		if e.IsBreak() {
			ev.Transparency = "transparent"
		}
		if _, err := c.srv.Events.Insert(c.calendarID, ev).Context(ctx).Do(); err != nil {
			return written, fmt.Errorf("inserting event for %s: %w", e.Task.ID, err)
		}
		written++
	}
	c.logger.InfoContext(ctx, "exported schedule", "calendar", c.calendarID, "events", written)
	return written, nil
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
