package platform

import (
	"os"
	"runtime"
)

// SupportsPermissions reports whether the OS enforces Unix permission bits.
func SupportsPermissions() bool {
	return runtime.GOOS != "windows"
}

// Chmod sets file permissions. It is a no-op where SupportsPermissions is
// false, so callers can apply modes unconditionally.
func Chmod(path string, mode os.FileMode) error {
	if !SupportsPermissions() {
		return nil
	}
	return os.Chmod(path, mode)
}
