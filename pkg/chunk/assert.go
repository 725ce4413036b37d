//go:build !debugassert

package chunk

// assertf is a no-op in release builds. Build with -tags debugassert to
// enable the panicking variant in assert_debug.go.
func assertf(cond bool, format string, args ...any) {}
