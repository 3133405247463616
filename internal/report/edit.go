package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/timesheet/internal/model"
)

// CellEdit works out how to make the cell for a pair on date total target
// seconds. The first matching entry absorbs the difference; the returned id
// and duration are what to write back to the time log.
func CellEdit(logs []model.TimeLogEntry, projectID, subprojectID, date string, target int64) (string, int64, error) {
	if target < 0 {
		return "", 0, model.ErrInvalidDuration
	}

	first := -1
	var current int64
	for i, e := range logs {
		if e.ProjectID != projectID || e.SubprojectID != subprojectID || e.Date != date {
			continue
		}
		if first < 0 {
			first = i
		}
		current += e.Duration
	}
	if first < 0 {
		return "", 0, fmt.Errorf("%w: no entry for %s/%s on %s", model.ErrLogNotFound, projectID, subprojectID, date)
	}

	next := logs[first].Duration + target - current
	if next < 0 {
		return "", 0, fmt.Errorf("%w: other entries already exceed %s hours", model.ErrInvalidDuration, Hours(target))
	}
	return logs[first].ID, next, nil
}

// ParseDuration reads a duration given either as decimal hours ("1.5") or
// as a Go duration ("1h30m"), rounded to whole seconds.
func ParseDuration(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if h, err := strconv.ParseFloat(s, 64); err == nil {
		if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return 0, model.ErrInvalidDuration
		}
		return int64(math.Round(h * 3600)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, model.ErrInvalidDuration
	}
	return int64(d.Round(time.Second) / time.Second), nil
}
