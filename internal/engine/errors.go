package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/eos/internal/resource"
)

// ErrorKind classifies every rejection the engine reports. All kinds are
// recoverable: a rejected operation leaves state untouched.
type ErrorKind uint8

const (
	KindEntityNotFound ErrorKind = iota + 1
	KindPermissionDenied
	KindInvalidLocation
	KindInsufficientFuel
	KindInsufficientResources
	KindInvalidStructureType
	KindBuildCooldownActive
	KindNetworkMismatch
)

var errorKindNames = map[ErrorKind]string{
	KindEntityNotFound:        "EntityNotFound",
	KindPermissionDenied:      "PermissionDenied",
	KindInvalidLocation:       "InvalidLocation",
	KindInsufficientFuel:      "InsufficientFuel",
	KindInsufficientResources: "InsufficientResources",
	KindInvalidStructureType:  "InvalidStructureType",
	KindBuildCooldownActive:   "BuildCooldownActive",
	KindNetworkMismatch:       "NetworkMismatch",
}

func (k ErrorKind) String() string {
	if n, ok := errorKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// MarshalText lets kinds appear by name in JSON.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is the single error type returned by engine operations.
type Error struct {
	Kind      ErrorKind          `json:"kind"`
	Msg       string             `json:"message"`
	Shortfall resource.Inventory `json:"shortfall,omitempty"` // InsufficientResources only
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

// Is matches any *Error of the same kind, so errors.Is works against the
// sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrEntityNotFound        = &Error{Kind: KindEntityNotFound}
	ErrPermissionDenied      = &Error{Kind: KindPermissionDenied}
	ErrInvalidLocation       = &Error{Kind: KindInvalidLocation}
	ErrInsufficientFuel      = &Error{Kind: KindInsufficientFuel}
	ErrInsufficientResources = &Error{Kind: KindInsufficientResources}
	ErrInvalidStructureType  = &Error{Kind: KindInvalidStructureType}
	ErrBuildCooldownActive   = &Error{Kind: KindBuildCooldownActive}
	ErrNetworkMismatch       = &Error{Kind: KindNetworkMismatch}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func shortfallError(missing resource.Inventory, format string, args ...any) *Error {
	e := newError(KindInsufficientResources, format, args...)
	e.Shortfall = missing
	e.Msg += " (missing " + missing.String() + ")"
	return e
}

// KindOf returns the kind of an engine error, or 0 for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
