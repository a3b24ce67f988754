package collection

import (
	"fmt"
	"strconv"
	"strings"
)

// idAllocator issues monotonically increasing, type-prefixed identifiers
// such as POST_7. It holds no memory of specific prior ids; Observe advances
// the counter past any externally sourced id so identifiers issued after a
// reload never collide with persisted ones.
//
// The allocator is not safe for concurrent use on its own; collections call
// it under their own lock.
type idAllocator struct {
	prefix string
	next   int64
}

func newIDAllocator(prefix string) *idAllocator {
	return &idAllocator{prefix: prefix, next: 1}
}

// NextID returns the next identifier and advances the counter.
func (a *idAllocator) NextID() string {
	id := fmt.Sprintf("%s_%d", a.prefix, a.next)
	a.next++
	return id
}

// Observe reseeds the counter past an externally sourced id. Ids with a
// different prefix or a malformed numeric suffix are ignored.
func (a *idAllocator) Observe(id string) {
	suffix, ok := strings.CutPrefix(id, a.prefix+"_")
	if !ok {
		return
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || n < 0 {
		return
	}
	if n >= a.next {
		a.next = n + 1
	}
}
