package terminal

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nexuscloud/nexus/internal/metrics"
	"github.com/nexuscloud/nexus/internal/registry"
)

// ErrPermissionDenied marks commands rejected by the restricted gate.
var ErrPermissionDenied = errors.New("permission denied")

// allowedPrefix is the only command family restricted users may run.
const allowedPrefix = "npm install"

// chain metacharacters forbidden for restricted users, so an allowed-looking
// prefix cannot smuggle a second command. This is a textual gate, not a
// shell parser; admins bypass it entirely.
var chainTokens = []string{";", "&&", "|"}

// Executor runs operator-supplied shell commands. Execution blocks the
// caller until the command completes; there is no timeout.
type Executor struct {
	workDir string
}

func New(workDir string) *Executor {
	return &Executor{workDir: workDir}
}

// Run executes command for the given role. Restricted callers must start
// with the allowed prefix and may not chain or pipe. The returned string is
// the combined stdout/stderr, the execution error message when output is
// empty, or "Done." for silent success.
func (e *Executor) Run(role registry.Role, command string) (string, error) {
	metrics.IncTerminalCommand(string(role))

	if role != registry.RoleAdmin {
		if !strings.HasPrefix(strings.TrimSpace(command), allowedPrefix) {
			return "", fmt.Errorf("%w: only %q allowed", ErrPermissionDenied, allowedPrefix)
		}
		for _, tok := range chainTokens {
			if strings.Contains(command, tok) {
				return "", fmt.Errorf("%w: complex commands not allowed", ErrPermissionDenied)
			}
		}
	}

	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = e.workDir
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		return string(out), nil
	}
	if err != nil {
		return err.Error(), nil
	}
	return "Done.", nil
}
