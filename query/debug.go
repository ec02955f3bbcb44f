package query

import "fmt"

// assertf panics with a formatted message. The engines call it only behind
// their DebugChecks option to turn addressing precondition violations into
// immediate failures instead of silent out-of-range reads.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
