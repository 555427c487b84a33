package domain

import "errors"

var (
	ErrAlreadyRunning      = errors.New("another taskguard daemon is already running")
	ErrRecordNotFound      = errors.New("record not found")
	ErrRecordExists        = errors.New("record already exists")
	ErrEmptyTask           = errors.New("task text is empty")
	ErrDialogUnavailable   = errors.New("dialog command unavailable")
	ErrTaskToolUnavailable = errors.New("task tool unavailable")
)
