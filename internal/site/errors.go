package site

import "errors"

var (
	ErrDesiredOutOfRange     = errors.New("desired temperature out of range")
	ErrInvalidAbsence        = errors.New("absence duration must be > 0 hours")
	ErrInvalidDaysPerWeek    = errors.New("days per week must be within 1..7")
	ErrInvalidComfortBounds  = errors.New("invalid comfort bounds")
	ErrInvalidOutdoorReading = errors.New("invalid outdoor temperature")
)
