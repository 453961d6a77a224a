// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates internal server error.
//
// Data-store and infrastructure failures are logged where they happen and
// surfaced to callers only as ErrInternal.
var ErrInternal = errors.New("internal")
