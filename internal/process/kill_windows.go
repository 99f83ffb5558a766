//go:build windows

// Package process terminates the browser processes started for snapshots.
package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills pid and its child tree with taskkill.
// /F = force kill, /T = terminate child processes.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// error ignored: launcher.Kill() runs afterwards
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
