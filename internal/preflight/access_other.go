//go:build !(linux || darwin || freebsd)

package preflight

import "errors"

var errUnsupported = errors.New("free space query unsupported on this platform")

func checkAccess(string, bool) error { return nil }

// FreeBytes is not implemented on this platform.
func FreeBytes(string) (int64, error) {
	return 0, errUnsupported
}
