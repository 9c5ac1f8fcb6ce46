package metrics

import "runtime"

func numGoroutines() int {
	return runtime.NumGoroutine()
}
