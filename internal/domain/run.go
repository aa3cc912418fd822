package domain

import "time"

// ScheduleRun is one stored scheduling request and its response.
type ScheduleRun struct {
	ID            string
	CreatedAt     time.Time
	Timezone      string
	TaskCount     int
	PlacedCount   int
	UnplacedCount int
	SplitCount    int
	BreakCount    int
	Fallback      bool
	RequestJSON   []byte
	ResponseJSON  []byte
	Warnings      []string
}
