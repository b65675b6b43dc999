//go:build profile

package profiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Init must be called once before Start records anything. capacity is the
// number of open/close events the ring keeps; <= 0 picks 1M.
func Init(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 20
	}
	ring.init(capacity)
}

// Start opens a scope and returns the func that closes it.
func Start(name string) func() {
	if !ring.ready.Load() {
		return func() {}
	}
	id := names.intern(name)
	begin := time.Now().UnixNano()
	ring.push(event{at: begin, scope: id, open: true})
	return func() {
		end := time.Now().UnixNano()
		if end < begin {
			end = begin
		}
		ring.push(event{at: end, scope: id})
	}
}

// Dump writes the captured scopes as a speedscope profile into the temp
// directory and returns its path.
func Dump() (string, error) {
	evs := ring.snapshot()
	if len(evs) == 0 {
		return "", ErrNoEvents
	}
	doc, err := speedscope(evs, names.snapshot())
	if err != nil {
		return "", err
	}
	path := filepath.Join(os.TempDir(), "grove-vk.speedscope.json")
	if err := writeJSON(path, doc); err != nil {
		return "", fmt.Errorf("profiler: %w", err)
	}
	return path, nil
}

type eventRing struct {
	ready atomic.Bool
	size  uint64
	next  atomic.Uint64
	evs   []event
}

func (r *eventRing) init(capacity int) {
	r.size = uint64(capacity)
	r.evs = make([]event, r.size)
	r.next.Store(0)
	r.ready.Store(true)
}

func (r *eventRing) push(e event) {
	i := r.next.Add(1) - 1
	r.evs[i%r.size] = e
}

// snapshot returns the retained events in write order.
func (r *eventRing) snapshot() []event {
	n := r.next.Load()
	if n == 0 {
		return nil
	}
	first := uint64(0)
	if n > r.size {
		first = n - r.size
	}
	out := make([]event, 0, n-first)
	for k := first; k < n; k++ {
		out = append(out, r.evs[k%r.size])
	}
	return out
}

type interner struct {
	mu    sync.Mutex
	list  []string
	index map[string]int
}

func (in *interner) intern(name string) int {
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[name]; ok {
		return id
	}
	if in.index == nil {
		in.index = map[string]int{}
	}
	id := len(in.list)
	in.index[name] = id
	in.list = append(in.list, name)
	return id
}

func (in *interner) snapshot() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]string(nil), in.list...)
}

var (
	ring  eventRing
	names interner
)
