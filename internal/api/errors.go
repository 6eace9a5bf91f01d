package api

import (
	"errors"
	"fmt"
)

// NetworkError reports a transport, status, or parse failure for one request.
type NetworkError struct {
	Path   string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DataShapeError reports a payload key that is missing or has the wrong type.
// The decoder that returns it has already substituted a neutral default.
type DataShapeError struct {
	Path string
	Key  string
	Want string
}

func (e *DataShapeError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("%s: missing key %q", e.Path, e.Key)
	}
	return fmt.Sprintf("%s: key %q is not %s", e.Path, e.Key, e.Want)
}

// IsShapeOnly reports whether err carries only shape problems, meaning the
// decoded value is usable with defaults.
func IsShapeOnly(err error) bool {
	if err == nil {
		return true
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return false
	}
	var shapeErr *DataShapeError
	return errors.As(err, &shapeErr)
}
