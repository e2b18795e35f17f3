//go:build !unix

package relay

// lockPassword is a no-op on platforms without an mlock equivalent wired
// up; the password is still never written anywhere but the init command.
func lockPassword(b []byte) {}

func unlockPassword(b []byte) {}
