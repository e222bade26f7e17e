package services

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrSwitchMismatch  = errors.New("program does not match the pending switch")
	ErrUnreadableImage = errors.New("could not read qr code")
)
