package service

import "errors"

var (
	ErrCyclicDependency  = errors.New("cyclic metric dependency")
	ErrUnknownDependency = errors.New("unknown metric dependency")
	ErrNotReady          = errors.New("engine has not loaded both snapshot and option")
	ErrNoDiscrepancy     = errors.New("no discrepancy to resolve")
	ErrUnknownAction     = errors.New("unknown discrepancy action")
	ErrOptionLimit       = errors.New("option limit reached")
	ErrOptionNotFound    = errors.New("option not found")
	ErrSessionNotFound   = errors.New("workout session not found")
	ErrInvalidInput      = errors.New("invalid input")
)
