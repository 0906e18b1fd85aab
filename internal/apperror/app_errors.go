package apperror

import "errors"

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchTerminated = errors.New("match is terminated")
	ErrJoinRejected    = errors.New("match rejected the join attempt")
	ErrNotFound        = errors.New("not found")
	ErrInvalidAccount  = errors.New("account id is required")
	ErrQueueFull       = errors.New("queue is full")
)
