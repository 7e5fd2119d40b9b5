package sysinfo

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestAvailableParallelism(t *testing.T) {
	qt.Check(t, AvailableParallelism() >= 1, qt.IsTrue)
}
