package roundid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Crockford's base32 alphabet, lowercase. Sorts lexicographically in
// timestamp order so round IDs are chronologically sortable.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// idLen is the encoded length: 48 timestamp bits + 32 random bits = 80
// bits, which packs into 16 base32 characters.
const idLen = 16

// RandSource supplies randomness for ID generation. Satisfied by
// *rand.Rand for deterministic tests.
type RandSource interface {
	Uint32() uint32
}

// Generator produces round identifiers with configurable randomness.
type Generator struct {
	src RandSource
}

// NewGenerator creates a generator. A nil source means crypto/rand.
func NewGenerator(src RandSource) *Generator {
	return &Generator{src: src}
}

// New creates a round ID using crypto randomness.
func New() string {
	return NewGenerator(nil).New()
}

// New creates a round ID: millisecond timestamp followed by random bits,
// encoded as 16 lowercase base32 characters.
func (g *Generator) New() string {
	var raw [10]byte

	now := time.Now().UnixMilli()
	raw[0] = byte(now >> 40)
	raw[1] = byte(now >> 32)
	raw[2] = byte(now >> 24)
	raw[3] = byte(now >> 16)
	raw[4] = byte(now >> 8)
	raw[5] = byte(now)

	if g.src != nil {
		binary.BigEndian.PutUint32(raw[6:], g.src.Uint32())
	} else {
		if _, err := rand.Read(raw[6:]); err != nil {
			panic("roundid: failed to read random bytes: " + err.Error())
		}
	}

	var sb strings.Builder
	sb.Grow(idLen)
	// 80 bits split into 16 five-bit groups, most significant first.
	var acc uint64
	bits := 0
	for _, b := range raw {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			sb.WriteByte(alphabet[(acc>>uint(bits))&0x1f])
		}
	}
	return sb.String()
}

// Validate checks that an ID has the expected length and alphabet.
func Validate(id string) error {
	if len(id) != idLen {
		return fmt.Errorf("round ID must be %d characters, got %d", idLen, len(id))
	}
	for i := 0; i < len(id); i++ {
		if !strings.ContainsRune(alphabet, rune(id[i])) {
			return fmt.Errorf("invalid character %q at position %d", id[i], i)
		}
	}
	return nil
}
