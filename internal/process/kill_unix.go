//go:build !windows

// Package process terminates the headless browser started for PDF export.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, which takes
// down Chrome's renderer and GPU children along with the browser.
// Errors are ignored: the launcher's own Kill runs afterwards.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
