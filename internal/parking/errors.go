package parking

import "errors"

var (
	ErrNoCapacity   = errors.New("no available slot")
	ErrInvalidState = errors.New("invalid slot state")
	ErrSlotNotFound = errors.New("slot not found")
	ErrInvalidInput = errors.New("invalid request")
	ErrPersistence  = errors.New("persisting parking data failed")
)
