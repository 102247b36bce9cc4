//go:build unix

package pool

import (
	"github.com/buildbarn/bb-storage/pkg/util"

	"golang.org/x/sys/unix"
)

// standardStreamsReserved is subtracted from the discovered soft
// limit to account for stdin, stdout and stderr, which are assumed to
// already be open.
const standardStreamsReserved = 3

func discoverCap() (int, error) {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, util.StatusWrapf(err, "Failed to obtain the RLIMIT_NOFILE soft limit")
	}
	limit := int(rlimit.Cur) - standardStreamsReserved
	if limit < 1 {
		limit = 1
	}
	return limit, nil
}
