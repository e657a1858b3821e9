package engine

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"sync"

	"github.com/google/uuid"

	"github.com/fpcfgo/fpcf/internal/epkstate"
	"github.com/fpcfgo/fpcf/pkg/lattice"
)

const shardCount = 64

// stateMap is the "concurrent map from (entity, kind) to state... with
// per-bucket locks" §5 calls for: a fixed array of shards, each an
// ordinary map guarded by its own mutex, so unrelated entities never
// contend on the same lock.
type stateMap struct {
	seed   maphash.Seed
	shards [shardCount]shard
}

type shard struct {
	mu sync.Mutex
	m  map[epkstate.Key]*epkstate.State
}

func newStateMap() *stateMap {
	sm := &stateMap{seed: maphash.MakeSeed()}
	for i := range sm.shards {
		sm.shards[i].m = make(map[epkstate.Key]*epkstate.State)
	}
	return sm
}

// shardFor picks key's shard by hashing its identity directly rather than
// formatting it into a string first: the entities this package actually
// sees are google/uuid.UUIDs (internal/demoanalyses) or plain strings/ints
// (tests), all of which maphash can consume without an intermediate
// allocation. Only a truly exotic Entity type falls through to %v.
func (sm *stateMap) shardFor(key epkstate.Key) *shard {
	var h maphash.Hash
	h.SetSeed(sm.seed)
	writeEntity(&h, key.E)
	var kbuf [8]byte
	binary.LittleEndian.PutUint64(kbuf[:], uint64(key.K))
	_, _ = h.Write(kbuf[:])
	return &sm.shards[h.Sum64()%shardCount]
}

func writeEntity(h *maphash.Hash, e lattice.Entity) {
	switch v := e.(type) {
	case string:
		_, _ = h.WriteString(v)
	case uuid.UUID:
		_, _ = h.Write(v[:])
	case int:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	default:
		_, _ = fmt.Fprintf(h, "%v", v)
	}
}

// getOrCreate returns the existing state for key, or creates one under
// kind if absent. created reports whether this call created it.
func (sm *stateMap) getOrCreate(key epkstate.Key, kind *lattice.Kind) (st *epkstate.State, created bool) {
	s := sm.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.m[key]; ok {
		return st, false
	}
	st = epkstate.New(key, kind)
	s.m[key] = st
	return st, true
}

// get returns the existing state for key, if any.
func (sm *stateMap) get(key epkstate.Key) (*epkstate.State, bool) {
	s := sm.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.m[key]
	return st, ok
}

// snapshot returns every state currently in the map. Used only after
// quiescence (fallback & cycle resolution, entities() on the façade), so
// it is fine for this to take every shard lock in turn rather than all at
// once.
func (sm *stateMap) snapshot() []*epkstate.State {
	var out []*epkstate.State
	for i := range sm.shards {
		s := &sm.shards[i]
		s.mu.Lock()
		for _, st := range s.m {
			out = append(out, st)
		}
		s.mu.Unlock()
	}
	return out
}
