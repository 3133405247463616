package model

import "time"

// StopwatchSnapshot is the persisted state of the single session timer.
// StartTime is set if and only if IsRunning is true. ElapsedTime holds the
// seconds of completed segments. SessionStart is the first start of the
// session and survives pauses.
type StopwatchSnapshot struct {
	IsRunning    bool       `json:"isRunning"`
	StartTime    *time.Time `json:"startTime"`
	ElapsedTime  int64      `json:"elapsedTime"`
	SessionStart *time.Time `json:"sessionStart,omitempty"`
}

// Display returns the seconds to show at now.
func (s StopwatchSnapshot) Display(now time.Time) int64 {
	if !s.IsRunning || s.StartTime == nil {
		return s.ElapsedTime
	}
	return s.ElapsedTime + DeltaSeconds(*s.StartTime, now)
}

// Active reports whether the snapshot holds tracked time.
func (s StopwatchSnapshot) Active() bool {
	return s.IsRunning || s.ElapsedTime > 0
}

// DeltaSeconds returns whole seconds from start to end, truncated.
// Clock skew never yields a negative value.
func DeltaSeconds(start, end time.Time) int64 {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

// QueuedSession is a displaced session set aside for later resumption.
type QueuedSession struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	SubprojectID   string    `json:"subprojectId"`
	ProjectName    string    `json:"projectName"`
	SubprojectName string    `json:"subprojectName"`
	ElapsedTime    int64     `json:"elapsedTime"`
	StartTime      time.Time `json:"startTime"`
}

// Selection is the currently selected project/subproject pair.
type Selection struct {
	ProjectID    string `json:"projectId"`
	SubprojectID string `json:"subprojectId"`
}

// Complete reports whether both a project and a subproject are selected.
func (s Selection) Complete() bool {
	return s.ProjectID != "" && s.SubprojectID != ""
}

// Matches reports whether the selection refers to the given pair.
func (s Selection) Matches(projectID, subprojectID string) bool {
	return s.ProjectID == projectID && s.SubprojectID == subprojectID
}
