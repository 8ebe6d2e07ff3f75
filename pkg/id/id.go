package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"
)

// Generator hands out ULID strings stamped from its clock.
//
// ULIDs are lexicographically sortable by generation time, so candle ids sort
// in creation order. Entropy is monotonic: ids generated within the same
// millisecond (or under a frozen fake clock) still increase.
type Generator struct {
	mu    sync.Mutex
	clock clockwork.Clock
	mono  io.Reader
}

// NewGenerator seeds a PRNG from crypto/rand and stamps ids from clock.
func NewGenerator(clock clockwork.Clock) *Generator {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = clock.Now().UnixNano()
	}
	return NewSeededGenerator(clock, seed)
}

// NewSeededGenerator is NewGenerator with fixed entropy, for reproducible ids.
func NewSeededGenerator(clock clockwork.Clock, seed int64) *Generator {
	return &Generator{
		clock: clock,
		mono:  ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}
}

// New returns the next ULID string.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.clock.Now().UTC()), g.mono)
	if err != nil {
		// Only possible if the monotonic entropy overflows within one millisecond.
		panic(err)
	}
	return id.String()
}
