//go:build windows

package supervisor

import "os/exec"

func setProcAttrs(_ *exec.Cmd) {}

// terminate kills the direct child; Windows has no process-group signals.
func terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}

func kill(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
