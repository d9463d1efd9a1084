package machine

import "runtime"

// SystemInfo returns the i'th entry of the small, fixed table of
// host-environment strings a compiled program can query: 0 is the backend
// name, 1 is the host OS, 2 is OS/architecture.
func SystemInfo(i int) string {
	switch i {
	case 0:
		return "go"
	case 1:
		return runtime.GOOS
	case 2:
		return runtime.GOOS + "/" + runtime.GOARCH
	default:
		return ""
	}
}
