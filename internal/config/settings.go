package config

import "sync"

// BakeSettings holds runtime-adjustable bake settings
type BakeSettings struct {
	mu          sync.RWMutex
	workers     int
	chunkRadius int // in chunks
}

var globalBakeSettings = &BakeSettings{
	workers:     4,
	chunkRadius: 2,
}

// GetWorkers returns the number of concurrent chunk bakes
func GetWorkers() int {
	globalBakeSettings.mu.RLock()
	defer globalBakeSettings.mu.RUnlock()
	return globalBakeSettings.workers
}

// SetWorkers sets the number of concurrent chunk bakes, clamped to 1..64
func SetWorkers(n int) {
	globalBakeSettings.mu.Lock()
	defer globalBakeSettings.mu.Unlock()
	globalBakeSettings.workers = clamp(n, 1, 64)
}

// GetChunkRadius returns the radius, in chunks, baked around the origin
func GetChunkRadius() int {
	globalBakeSettings.mu.RLock()
	defer globalBakeSettings.mu.RUnlock()
	return globalBakeSettings.chunkRadius
}

// SetChunkRadius sets the bake radius, clamped to 0..16
func SetChunkRadius(radius int) {
	globalBakeSettings.mu.Lock()
	defer globalBakeSettings.mu.Unlock()
	globalBakeSettings.chunkRadius = clamp(radius, 0, 16)
}

// GetChunkCount returns how many chunks a bake of the current radius covers
func GetChunkCount() int {
	side := 2*GetChunkRadius() + 1
	return side * side
}

// Apply copies file settings into the runtime settings.
func Apply(cfg *Config) {
	SetWorkers(cfg.Workers())
	if cfg.World.Radius > 0 {
		SetChunkRadius(cfg.World.Radius)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
