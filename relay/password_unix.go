//go:build unix

package relay

import (
	"log"

	"golang.org/x/sys/unix"
)

// lockPassword asks the OS to prevent the password's backing memory from
// being paged to disk. Failure to lock is logged and otherwise ignored, per
// spec: it is a best-effort hardening measure, not a precondition for
// authenticating.
func lockPassword(b []byte) {
	if len(b) == 0 {
		return
	}
	if err := unix.Mlock(b); err != nil {
		log.Printf("relay: mlock password buffer: %v", err)
	}
}

func unlockPassword(b []byte) {
	if len(b) == 0 {
		return
	}
	_ = unix.Munlock(b)
}
