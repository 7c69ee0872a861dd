package telemetry

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the telemetry pipeline.
type ErrorKind string

const (
	KindInvalidArgument  ErrorKind = "invalid_argument"
	KindNetworkOrServer  ErrorKind = "network_or_server"
	KindMalformedPayload ErrorKind = "malformed_payload"
)

var (
	// ErrInvalidArgument is returned for non-positive offsets and unsupported windows.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNetworkOrServer matches any *FetchError of kind KindNetworkOrServer via errors.Is.
	ErrNetworkOrServer = errors.New("network or server error")
)

// FetchError describes a failed backend round trip.
type FetchError struct {
	Kind       ErrorKind
	Op         string // e.g. "GET /monitoring-plans-log/1"
	StatusCode int    // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s: unexpected status %d: %v", e.Kind, e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s: unexpected status %d", e.Kind, e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets callers match on the kind without unwrapping to the concrete type.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetworkOrServer:
		return e.Kind == KindNetworkOrServer
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	}
	return false
}

// KindOf maps any pipeline error onto the taxonomy. Unknown errors surface as
// network/server failures since every failure originates at the network boundary.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, ErrInvalidArgument) {
		return KindInvalidArgument
	}
	return KindNetworkOrServer
}
