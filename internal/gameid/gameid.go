// Package gameid generates sortable opaque identifiers for games and
// players: UUIDv7 payloads rendered as 26 characters of Crockford base32.
package gameid

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	alphabet = "0123456789abcdefghjkmnpqrstvwxyz"
	encLen   = 26
)

// Generator produces identifiers. The zero value uses crypto/rand;
// entropy and clock can be swapped for deterministic tests.
type Generator struct {
	Entropy io.Reader
	Now     func() time.Time
}

// New creates an identifier: a 48-bit millisecond timestamp followed by
// 74 bits of entropy, with UUIDv7 version and variant bits set, encoded
// as base32. IDs sort roughly by creation time.
func New() string {
	return (&Generator{}).New()
}

func (g *Generator) New() string {
	entropy := g.Entropy
	if entropy == nil {
		entropy = rand.Reader
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	var id [16]byte
	ms := uint64(now().UnixMilli())
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}
	if _, err := io.ReadFull(entropy, id[6:]); err != nil {
		panic(fmt.Sprintf("gameid: entropy read failed: %v", err))
	}
	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return encode(id)
}

// encode renders 128 bits as 26 base32 characters, 5 bits per character,
// most significant first. The final character carries 2 bits of padding.
func encode(id [16]byte) string {
	var b strings.Builder
	b.Grow(encLen)
	for i := 0; i < encLen; i++ {
		bit := i * 5
		idx := bit / 8
		off := bit % 8

		var v byte
		if off <= 3 {
			v = (id[idx] >> (3 - off)) & 0x1f
		} else {
			v = (id[idx] << (off - 3)) & 0x1f
			if idx+1 < len(id) {
				v |= id[idx+1] >> (11 - off)
			}
		}
		b.WriteByte(alphabet[v])
	}
	return b.String()
}

// Validate checks that id is a well formed identifier.
func Validate(id string) error {
	if len(id) != encLen {
		return fmt.Errorf("id must be %d characters, got %d", encLen, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("id overflows 128 bits: leading character %q", id[0])
	}
	for i := 0; i < len(id); i++ {
		if !strings.ContainsRune(alphabet, rune(id[i])) {
			return fmt.Errorf("invalid character %q at position %d", id[i], i)
		}
	}
	return nil
}
