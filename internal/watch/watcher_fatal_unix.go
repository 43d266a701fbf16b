// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// exhaustionErrnos are the inotify failures a watcher cannot recover from:
// the user watch limit and the process and system descriptor limits.
var exhaustionErrnos = []syscall.Errno{syscall.ENOSPC, syscall.EMFILE, syscall.ENFILE}

func isFatalFsnotifyError(err error) bool {
	for _, errno := range exhaustionErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
