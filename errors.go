package redisdns

import (
	"fmt"

	"github.com/pkg/errors"
)

// ProtocolError indicates a malformed RESP frame or an empty command. The
// connection that produced it stays open; the dispatcher replies with a
// RESP error and continues reading.
type ProtocolError struct {
	msg string
}

func (e ProtocolError) Error() string { return e.msg }

// NewProtocolError builds a ProtocolError with the given message.
func NewProtocolError(msg string) ProtocolError { return ProtocolError{msg: msg} }

// ArgumentError indicates wrong arity or a value that failed to parse as
// the type a command expects (for example a non-numeric TTL).
type ArgumentError struct {
	command string
	msg     string
}

func (e ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.command, e.msg)
}

// NewArgumentError builds an ArgumentError for the named command.
func NewArgumentError(command, msg string) ArgumentError {
	return ArgumentError{command: command, msg: msg}
}

// SemanticError indicates a request that is well-formed but cannot be
// satisfied given the current state of the datastore. The Datastore does
// not build one: RENAME of a missing key and LSET at an out-of-range index
// return ErrKeyNotFound and ErrIndexOutOfRange.
type SemanticError struct {
	msg string
}

func (e SemanticError) Error() string { return e.msg }

// NewSemanticError builds a SemanticError with the given message.
func NewSemanticError(msg string) SemanticError { return SemanticError{msg: msg} }

// Sentinel errors returned by Datastore and Pool methods. The dispatcher
// renders a Datastore sentinel's text to the client as an error reply.
var (
	// ErrKeyNotFound is returned when the key an operation needs is absent:
	// EXPIRE on a key with no store entry and no APC record, RENAME of a key
	// in no store, LSET on a key that holds no list.
	ErrKeyNotFound = errors.New("key not found")

	// ErrWrongType describes an operation for one type family applied to a
	// key of another. No Datastore method returns it: writes replace a key
	// of another family, and reads treat such a key as absent.
	ErrWrongType = errors.New("wrong type for key")

	// ErrIndexOutOfRange is returned internally by list operations that
	// resolve an index outside the bounds of the list.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrPoolStopped is returned by Pool.Submit once the pool has been
	// stopped; enqueueing further tasks is a programmer error.
	ErrPoolStopped = errors.New("worker pool stopped")
)

// wrapf attaches additional context to err using pkg/errors so the
// original cause survives for logging while the client-facing message
// stays short.
func wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
