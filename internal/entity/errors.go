package entity

import "errors"

var (
	ErrUnknownMark     = errors.New("unknown mark")
	ErrInvalidPosition = errors.New("invalid board position")
	ErrInvalidPayload  = errors.New("invalid payload")
)
