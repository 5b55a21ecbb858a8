package srv

import (
	"math/rand"
	"strings"
)

// Room codes are short so players can read them out loud. Stored uppercase;
// lookups go through NormalizeRoomID.
const (
	roomIDLen      = 4
	roomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ" // no I/O, they read as 1/0
	maxIDAttempts  = 64
)

func randomRoomID() string {
	var b [roomIDLen]byte
	for i := range b {
		b[i] = roomIDAlphabet[rand.Intn(len(roomIDAlphabet))]
	}
	return string(b[:])
}

func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
