package lifecycle

import "errors"

var (
	ErrInvalidPhase   = errors.New("invalid definition phase transition")
	ErrTargetExists   = errors.New("target already defined")
	ErrTargetNotFound = errors.New("target not registered with host")
	ErrEmptyName      = errors.New("target name cannot be empty")
)

// Journal errors
var (
	ErrOpenJournal   = errors.New("open definition journal")
	ErrAppendJournal = errors.New("append to definition journal")
	ErrReadJournal   = errors.New("read definition journal")
)
