package model

import "time"

// DateLayout is the format of TimeLogEntry.Date.
const DateLayout = "2006-01-02"

// TimeLogEntry is a logged span of work. Project and subproject names are
// copied at write time so the entry stays readable after a rename.
type TimeLogEntry struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	SubprojectID   string    `json:"subprojectId"`
	ProjectName    string    `json:"projectName"`
	SubprojectName string    `json:"subprojectName"`
	Duration       int64     `json:"duration"`
	Description    string    `json:"description"`
	Date           string    `json:"date"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
}

// DateKey returns the calendar day of t in DateLayout, in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// PendingLog is a stopped session waiting for a description before it is
// written to the ledger.
type PendingLog struct {
	ProjectID    string    `json:"projectId"`
	SubprojectID string    `json:"subprojectId"`
	Duration     int64     `json:"duration"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
}
