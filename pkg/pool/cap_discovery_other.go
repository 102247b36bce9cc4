//go:build !unix

package pool

// defaultCapOnUnsupportedPlatforms is used on platforms where the OS
// soft limit on open files cannot be queried through golang.org/x/sys/unix.
const defaultCapOnUnsupportedPlatforms = 253

func discoverCap() (int, error) {
	return defaultCapOnUnsupportedPlatforms, nil
}
