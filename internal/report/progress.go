package report

import (
	"time"

	"github.com/nhle/timesheet/internal/model"
)

// Progress is the logged time of one day against a target.
type Progress struct {
	Logged int64
	Target int64
}

// Fraction returns Logged/Target capped to [0, 1].
func (p Progress) Fraction() float64 {
	if p.Target <= 0 {
		return 0
	}
	f := float64(p.Logged) / float64(p.Target)
	if f > 1 {
		return 1
	}
	return f
}

// DailyProgress sums the entries of day plus any live seconds not yet
// logged.
func DailyProgress(logs []model.TimeLogEntry, day time.Time, targetHours float64, live int64) Progress {
	key := model.DateKey(day)
	p := Progress{Target: int64(targetHours * 3600), Logged: live}
	for _, e := range logs {
		if e.Date == key {
			p.Logged += e.Duration
		}
	}
	return p
}
