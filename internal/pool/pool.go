package pool

import (
	"strings"
	"sync"
)

// Builders backs the text rendering of leaderboards and style listings.
var Builders = sync.Pool{
	New: func() interface{} {
		return new(strings.Builder)
	},
}

// GetBuilder returns an empty builder from the pool.
func GetBuilder() *strings.Builder {
	return Builders.Get().(*strings.Builder)
}

// PutBuilder resets sb and returns it to the pool. Oversized builders are
// dropped so one huge listing does not pin memory.
func PutBuilder(sb *strings.Builder) {
	if sb.Cap() > 16*1024 {
		return
	}
	sb.Reset()
	Builders.Put(sb)
}

// Invites backs the per-event code lookup tables built by the resolver.
var Invites = sync.Pool{
	New: func() interface{} {
		return make(map[string]int, 32)
	},
}

func GetUseMap() map[string]int {
	return Invites.Get().(map[string]int)
}

func PutUseMap(m map[string]int) {
	if len(m) > 1024 {
		return
	}
	clear(m)
	Invites.Put(m)
}
