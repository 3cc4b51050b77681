package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 22

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	status := "[" + statusKindLabel(kind) + "]"
	if message != "" {
		status += " " + message
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", status)
	if colorize {
		return statusKindColor(kind) + line + ansiReset
	}
	return line
}

// checkStatus maps a pass/fail outcome onto a display kind. Optional
// failures only warn.
func checkStatus(passed, optional bool) statusKind {
	switch {
	case passed:
		return statusOK
	case optional:
		return statusWarn
	default:
		return statusError
	}
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

func renderSectionHeader(title string, colorize bool) string {
	line := "== " + strings.TrimSpace(title) + " =="
	if colorize {
		return ansiBlue + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
