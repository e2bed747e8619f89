//go:build !windows

package internal

import "os/exec"

func hideConsole(*exec.Cmd) {}
