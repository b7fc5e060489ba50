package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

// Requirement defines an external program a splice run relies on.
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
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Commands containing a path separator are checked in place; bare names are
// looked up on PATH.
func CheckBinaries(requirements []Requirement) []Status {
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
		if detail := locate(cmd); detail != "" {
			status.Detail = detail
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

func locate(cmd string) string {
	if !strings.ContainsRune(cmd, os.PathSeparator) {
		if _, err := exec.LookPath(cmd); err != nil {
			return fmt.Sprintf("binary %q not found", cmd)
		}
		return ""
	}
	info, err := os.Stat(cmd)
	if err != nil {
		return fmt.Sprintf("binary %q not found", cmd)
	}
	if info.IsDir() {
		return fmt.Sprintf("%q is a directory", cmd)
	}
	if err := unix.Access(cmd, unix.X_OK); err != nil {
		return fmt.Sprintf("binary %q not executable", cmd)
	}
	return ""
}

// BuildTool returns the program named by a shell-style build command, or
// "" when the command is empty.
func BuildTool(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
