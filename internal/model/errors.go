package model

import (
	"errors"
	"fmt"
)

// ConnectivityError marks a transient transport failure talking to the
// source chain. The cycle is retried with backoff.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string { return fmt.Sprintf("connectivity: %v", e.Err) }
func (e *ConnectivityError) Unwrap() error { return e.Err }

// RangeError marks an invalid scan range. Programming or configuration
// error, fatal.
type RangeError struct {
	From uint64
	To   uint64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: from %d > to %d", e.From, e.To)
}

// DecodeError marks a log whose topic/data shape does not match the
// expected event signature. Reported per record, never silently skipped.
type DecodeError struct {
	ID  EventID
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.ID, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// CorruptStateError marks persisted checkpoint state that exists but cannot
// be parsed. Fatal at startup; the store never silently resets.
type CorruptStateError struct {
	Source string
	Err    error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt checkpoint state at %s: %v", e.Source, e.Err)
}
func (e *CorruptStateError) Unwrap() error { return e.Err }

// PersistenceError marks a checkpoint write failure. Retryable with backoff.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persist checkpoint: %v", e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// TransientRelayError marks a relay failure worth retrying with the same
// action.
type TransientRelayError struct {
	Err error
}

func (e *TransientRelayError) Error() string { return fmt.Sprintf("transient relay: %v", e.Err) }
func (e *TransientRelayError) Unwrap() error { return e.Err }

// PermanentRelayError marks a relay failure that must not be retried. The
// event is dead-lettered.
type PermanentRelayError struct {
	Err error
}

func (e *PermanentRelayError) Error() string { return fmt.Sprintf("permanent relay: %v", e.Err) }
func (e *PermanentRelayError) Unwrap() error { return e.Err }

// IsConnectivity reports whether err is a ConnectivityError.
func IsConnectivity(err error) bool {
	var target *ConnectivityError
	return errors.As(err, &target)
}

// IsDecode reports whether err is a DecodeError.
func IsDecode(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// IsCorruptState reports whether err is a CorruptStateError.
func IsCorruptState(err error) bool {
	var target *CorruptStateError
	return errors.As(err, &target)
}

// IsPersistence reports whether err is a PersistenceError.
func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}

// IsTransientRelay reports whether err is a TransientRelayError.
func IsTransientRelay(err error) bool {
	var target *TransientRelayError
	return errors.As(err, &target)
}

// IsPermanentRelay reports whether err is a PermanentRelayError.
func IsPermanentRelay(err error) bool {
	var target *PermanentRelayError
	return errors.As(err, &target)
}
