// Package sysinfo answers questions about the capabilities of the machine
// the process is running on.
package sysinfo

import "runtime"

// AvailableParallelism reports how many tasks the machine can usefully run
// at once. Always at least 1.
func AvailableParallelism() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}
