// Package roomcode generates room codes and derives the channel name a
// room's participants meet on. The room password is folded into the channel
// name on the client and never sent anywhere: a wrong password simply lands
// the player on a different, empty channel.
package roomcode

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
)

// Alphabet excludes the lookalikes 0/O/1/I so codes survive being read
// aloud at the table.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

// argon2id parameters for the channel key derivation.
const (
	keyTime    = 1
	keyMemory  = 64 * 1024
	keyThreads = 4
	keyLen     = 16
)

// New returns a fresh 6-character room code.
func New() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		// Fallback to timestamp digits if crypto/rand is unavailable.
		ts := strconv.FormatInt(time.Now().UnixNano(), 10)
		return Normalize(ts[len(ts)-codeLength:])
	}

	code := make([]byte, codeLength)
	for i, b := range buf {
		code[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(code)
}

// Normalize uppercases and trims a user-supplied code so "ab12cd " and
// "AB12CD" name the same room.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ChannelName derives the channel for a room code and password. The
// password is stretched with argon2id, salted by the code, so the channel
// name leaks nothing usable about it.
func ChannelName(code, password string) string {
	code = Normalize(code)
	salt := []byte("huntroom:" + code)
	key := argon2.IDKey([]byte(password), salt, keyTime, keyMemory, keyThreads, keyLen)
	return "room:" + code + ":" + hex.EncodeToString(key)
}
