//go:build debugassert

package chunk

import "fmt"

// assertf panics with a formatted message when cond is false. Only compiled
// in with -tags debugassert; release builds use the no-op in assert.go.
// This matches spec.md §6/§7: out-of-range Get is a debug assertion, never
// a release-mode panic.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
