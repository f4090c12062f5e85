package model

import "errors"

// Sentinel kinds for model parsing errors.
var (
	ErrInvalidGender = errors.New("invalid gender")
	ErrInvalidAge    = errors.New("invalid age category")
	ErrInvalidCourse = errors.New("invalid course")
	ErrInvalidStroke = errors.New("invalid stroke")
	ErrInvalidEvent  = errors.New("invalid event")
	ErrInvalidSlot   = errors.New("invalid event slot")
)
