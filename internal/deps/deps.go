package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is an external binary the pipeline shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement plus the outcome of resolving it on PATH.
type Status struct {
	Requirement
	Path      string
	Available bool
	Detail    string
}

// LookPath resolves executables; tests replace it.
var LookPath = exec.LookPath

// Check resolves a single requirement.
func Check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Path = resolved
	status.Available = true
	return status
}

// CheckBinaries resolves every requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = Check(req)
	}
	return results
}

// MissingRequired names the unavailable requirements that are not optional.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
