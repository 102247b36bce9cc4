package pool

import (
	"github.com/buildbarn/bb-storage/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrLimitReached is returned by Manager.Open() when the configured
// cap has been reached and no idle descriptor could be evicted to
// make room for a new one.
var ErrLimitReached = status.Error(codes.ResourceExhausted, "Open file descriptor limit reached and no descriptor could be evicted")

// NewOpenFailedError wraps an error returned by a DescriptorTrait's
// Open() method. The wrapped error's gRPC status code, if any, is
// preserved.
func NewOpenFailedError(path string, cause error) error {
	return util.StatusWrapf(cause, "Failed to open %#v", path)
}

// NewTypeMismatchError is returned by Manager.GetHandler() when a
// Handler already exists for the canonical path, but was created for a
// different descriptor type.
func NewTypeMismatchError(path string) error {
	return status.Errorf(codes.FailedPrecondition, "File %#v is already opened with a different descriptor type", path)
}

// IsTypeMismatch returns whether err was produced by
// NewTypeMismatchError. It exists so that callers don't need to
// depend on the exact status code used internally.
func IsTypeMismatch(err error) bool {
	return status.Code(err) == codes.FailedPrecondition
}
