package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"subnode/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps a failure kind to a distinct process status so that callers
// can tell bad input from tool failures.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	switch services.Kind(err) {
	case services.KindValidation:
		return 2
	case services.KindMediaRead:
		return 3
	case services.KindTranscription:
		return 4
	case services.KindEncode:
		return 5
	case services.KindIO:
		return 6
	case services.KindConfiguration:
		return 7
	default:
		return 1
	}
}
