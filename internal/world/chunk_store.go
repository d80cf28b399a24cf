package world

import "sync"

// ChunkStore keeps the state arrays of every loaded chunk and hands out
// providers that see across chunk borders.
type ChunkStore struct {
	chunks map[ChunkPos]*ArrayProvider
	mu     sync.RWMutex
}

// NewChunkStore creates an empty chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[ChunkPos]*ArrayProvider),
	}
}

// GetChunk returns the state array for pos. If it doesn't exist and create is
// true, an empty one is added.
func (cs *ChunkStore) GetChunk(pos ChunkPos, create bool) *ArrayProvider {
	cs.mu.RLock()
	chunk, exists := cs.chunks[pos]
	cs.mu.RUnlock()
	if exists || !create {
		return chunk
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	// Another goroutine might have created it while we were waiting for the lock
	if existing, ok := cs.chunks[pos]; ok {
		return existing
	}
	chunk = NewArrayProvider()
	cs.chunks[pos] = chunk
	return chunk
}

// Remove unloads a chunk.
func (cs *ChunkStore) Remove(pos ChunkPos) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[pos]; ok {
		delete(cs.chunks, pos)
	}
}

// Positions returns the positions of all loaded chunks.
func (cs *ChunkStore) Positions() []ChunkPos {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]ChunkPos, 0, len(cs.chunks))
	for pos := range cs.chunks {
		out = append(out, pos)
	}
	return out
}

// Get returns the state at world block coordinates.
func (cs *ChunkStore) Get(x, y, z int) ChunkBlockState {
	chunk := cs.GetChunk(ChunkPosAt(x, z), false)
	if chunk == nil {
		return Absent()
	}
	return chunk.GetState(mod(x, ChunkWidth), y, mod(z, ChunkWidth))
}

// Set stores a state at world block coordinates, creating the chunk if needed.
func (cs *ChunkStore) Set(x, y, z int, state ChunkBlockState) {
	cs.GetChunk(ChunkPosAt(x, z), true).SetState(mod(x, ChunkWidth), y, mod(z, ChunkWidth), state)
}

// Provider returns a BlockStateProvider for the chunk at pos whose
// out-of-chunk lookups resolve in loaded neighbors.
func (cs *ChunkStore) Provider(pos ChunkPos) BlockStateProvider {
	return &storeProvider{store: cs, pos: pos, own: cs.GetChunk(pos, false)}
}

type storeProvider struct {
	store *ChunkStore
	pos   ChunkPos
	own   *ArrayProvider
}

func (p *storeProvider) GetState(x, y, z int) ChunkBlockState {
	if x >= 0 && x < ChunkWidth && z >= 0 && z < ChunkWidth {
		if p.own == nil {
			return Absent()
		}
		return p.own.GetState(x, y, z)
	}
	ox, _, oz := p.pos.Origin()
	return p.store.Get(ox+x, y, oz+z)
}

func (p *storeProvider) IsSectionEmpty(index int) bool {
	return p.own == nil || p.own.IsSectionEmpty(index)
}
