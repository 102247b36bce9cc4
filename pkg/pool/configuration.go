package pool

import (
	"github.com/buildbarn/bb-storage/pkg/clock"
	"github.com/buildbarn/bb-storage/pkg/eviction"
	"github.com/buildbarn/bb-storage/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// defaultPathCacheSize bounds the number of canonicalised paths the
// default PathCanonicaliser keeps memoized.
const defaultPathCacheSize = 4096

// Configuration holds the parameters needed to construct a Manager.
// Every field is optional; the zero value of Configuration produces a
// Manager that discovers its cap from the OS soft limit on open
// files, evicts least-recently-used descriptors first, and
// canonicalises paths against the real filesystem.
//
// Unlike pkg/filesystem/pool/configuration.go in the reference
// repository this is a plain struct rather than a protobuf message:
// the core descriptor pool has no file-format or CLI concerns of its
// own (see spec.md §1, Non-goals), so there is nothing for a
// configuration-file front-end to parse here. A caller embedding this
// in a larger, protobuf-configured service is expected to populate
// this struct from its own configuration layer.
type Configuration struct {
	// Limit is the maximum number of descriptors that may be open at
	// once. Zero means "query the OS soft limit on open files and
	// subtract a small constant for standard streams."
	Limit int

	// EvictionPolicy selects the victim when the limit is reached.
	// Defaults to NewLRUEvictionPolicy().
	EvictionPolicy EvictionPolicy

	// Clock supplies the monotonic timestamps used for
	// DescriptorRecord.last_used bookkeeping. Defaults to
	// clock.SystemClock.
	Clock clock.Clock

	// PathCanonicaliser normalises paths into the keys under which
	// Handlers are shared. Defaults to a cache-backed canonicaliser
	// over the real filesystem.
	PathCanonicaliser PathCanonicaliser

	// ErrorLogger receives descriptor close failures, which are
	// logged but never propagated (spec.md §7). Defaults to a logger
	// that discards everything.
	ErrorLogger util.ErrorLogger
}

// NewManager constructs a Manager from the given Configuration.
func NewManager(configuration Configuration) (*Manager, error) {
	limit := configuration.Limit
	switch {
	case limit == 0:
		discovered, err := discoverCap()
		if err != nil {
			return nil, util.StatusWrap(err, "Failed to discover the file descriptor limit")
		}
		limit = discovered
	case limit < 0:
		return nil, status.Error(codes.InvalidArgument, "Limit must be zero or positive")
	}

	policy := configuration.EvictionPolicy
	if policy == nil {
		policy = NewLRUEvictionPolicy()
	}

	cl := configuration.Clock
	if cl == nil {
		cl = clock.SystemClock
	}

	pathCanonicaliser := configuration.PathCanonicaliser
	if pathCanonicaliser == nil {
		pathCanonicaliser = NewCachingPathCanonicaliser(NewOSPathCanonicaliser(), defaultPathCacheSize, eviction.NewLRUSet[string]())
	}

	errorLogger := configuration.ErrorLogger
	if errorLogger == nil {
		errorLogger = discardErrorLogger{}
	}

	registerManagerMetrics()
	managerDescriptorsLimit.Set(float64(limit))

	return &Manager{
		limit:             limit,
		policy:            policy,
		clock:             cl,
		pathCanonicaliser: pathCanonicaliser,
		errorLogger:       errorLogger,
		records:           map[DescriptorID]*descriptorRecord{},
		registry:          newRegistry(),
	}, nil
}
