// Package ulid generates lexically sortable identifiers: a 48-bit
// millisecond timestamp followed by 80 random bits, Crockford base32
// encoded into 26 characters.
package ulid

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	mu      sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

// New returns a fresh ULID. IDs created within the same millisecond carry
// an increasing sequence in their first random bytes so they still sort in
// creation order.
func New() string {
	return newAt(time.Now())
}

func newAt(now time.Time) string {
	mu.Lock()
	ts := uint64(now.UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}
	seq := lastSeq
	mu.Unlock()

	var b [16]byte
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encode(b)
}

// encode writes the 128 bits of b as 26 base32 digits, most significant
// first. The leading digit carries only 3 bits.
func encode(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])

	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
