package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"hash"
	"math"
)

const roundSize = sha256.Size

// Stream generates deterministic bytes using HMAC-SHA256 keyed by the server
// seed over "client:nonce:round". A trial owns exactly one Stream, keyed by
// its index, so its draws never depend on how trials are scheduled.
type Stream struct {
	mac    hash.Hash
	client string
	nonce  uint64
	round  uint64
	pos    int
	buffer [roundSize]byte
}

// NewStream creates the stream for one nonce, positioned at its first byte.
func NewStream(seeds Seeds, nonce uint64) *Stream {
	s := &Stream{
		mac:    hmac.New(sha256.New, []byte(seeds.Server)),
		client: seeds.Client,
		nonce:  nonce,
	}
	s.generateRound()

	return s
}

// Next returns the next byte from the stream
func (s *Stream) Next() byte {
	if s.pos >= roundSize {
		s.round++
		s.pos = 0
		s.generateRound()
	}

	b := s.buffer[s.pos]
	s.pos++
	return b
}

// NextFloat consumes exactly 4 bytes and returns a float in [0, 1).
func (s *Stream) NextFloat() float64 {
	return bytesToFloat([4]byte{s.Next(), s.Next(), s.Next(), s.Next()})
}

func (s *Stream) generateRound() {
	s.mac.Reset()
	fmt.Fprintf(s.mac, "%s:%d:%d", s.client, s.nonce, s.round)
	s.mac.Sum(s.buffer[:0])
}

// bytesToFloat converts exactly 4 bytes to a base-256 fraction.
func bytesToFloat(bytes [4]byte) float64 {
	result := 0.0
	for i, b := range bytes {
		result += float64(b) / math.Pow(256, float64(i+1))
	}
	return result
}
