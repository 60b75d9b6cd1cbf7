package main

import (
	"fmt"
	"io"

	"texflow/internal/observ"
)

func printScheduleTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	_, _ = fmt.Fprint(out, timer.Summary())
}
