package core

import (
	"errors"
)

var (
	ErrEventCodeInvalid       = errors.New("event code out of range")
	ErrEventAlreadyRegistered = errors.New("listener already registered for event code")
	ErrEventListenerNotFound  = errors.New("listener not registered for event code")
	ErrEventSystemShutdown    = errors.New("event system is shut down")
)
