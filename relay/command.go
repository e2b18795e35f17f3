package relay

import (
	"fmt"
	"strconv"
)

// buildInit formats the handshake command. When password is empty the
// password= clause is omitted entirely, matching a relay configured without
// authentication.
func buildInit(password string) []byte {
	if password == "" {
		return []byte("init\n")
	}
	return []byte(fmt.Sprintf("init password=%s\n", password))
}

// buildPing formats a ping command carrying the lowercase hex id allocated
// for it, plus optional echoed text.
func buildPing(id uint32, text string) []byte {
	hexID := strconv.FormatUint(uint64(id), 16)
	if text == "" {
		return []byte(fmt.Sprintf("ping %s\n", hexID))
	}
	return []byte(fmt.Sprintf("ping %s %s\n", hexID, text))
}
