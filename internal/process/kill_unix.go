//go:build !windows

// Package process terminates the browser processes started for snapshots.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid so that
// Chrome's renderer and GPU children exit with it.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// error ignored: launcher.Kill() runs afterwards
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
