package model

import "errors"

var (
	ErrInvalidSelection              = errors.New("project and subproject must both be selected")
	ErrUnresolvedProjectOrSubproject = errors.New("project or subproject not found")
	ErrAlreadyRunning                = errors.New("timer is already running")
	ErrNotRunning                    = errors.New("timer is not running")
	ErrEmptySession                  = errors.New("session has no tracked time")
	ErrNoPendingLog                  = errors.New("no stopped session awaiting a description")
	ErrQueuedSessionNotFound         = errors.New("queued session not found")
	ErrLogNotFound                   = errors.New("time log entry not found")
	ErrProjectNotFound               = errors.New("project not found")
	ErrSubprojectNotFound            = errors.New("subproject not found")
	ErrInvalidDuration               = errors.New("duration must be between 0 and 24 hours")
	ErrEmptyName                     = errors.New("name must not be empty")
	ErrNotLoggedIn                   = errors.New("not logged in")
)
