//go:build windows

// Package process terminates the headless browser started for PDF export.
package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills pid and its child tree with taskkill (/F force,
// /T tree). Errors are ignored: the launcher's own Kill runs afterwards.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
