// Package deps reports on the external archivers Stem Zipper can call.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"stemzipper/internal/config"
)

// Requirement defines an external tool Stem Zipper relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the archivers used for volume splitting on goos. The
// tool for the other platform is reported as optional. Both are optional
// when volume splitting is disabled.
func Requirements(goos string, cfg config.Volumes) []Requirement {
	windows := goos == "windows"
	reqs := []Requirement{
		{
			Name:        "zip",
			Command:     cfg.ZipCommand,
			Description: "Splits oversized archives into volumes on Unix",
			Optional:    windows || !cfg.Enabled,
		},
		{
			Name:        "7-Zip",
			Command:     cfg.SevenZipCommand,
			Description: "Splits oversized archives into volumes on Windows",
			Optional:    !windows || !cfg.Enabled,
		},
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	return checkWith(requirements, exec.LookPath)
}

func checkWith(requirements []Requirement, lookPath func(string) (string, error)) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := lookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Path = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the required dependencies that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
