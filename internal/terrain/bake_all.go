package terrain

import (
	"context"
	"time"

	"mc-bake/internal/metrics"
	"mc-bake/internal/registry"
	"mc-bake/internal/world"

	"golang.org/x/sync/errgroup"
)

// ProviderFunc returns the block states a chunk is baked from.
type ProviderFunc func(pos world.ChunkPos) world.BlockStateProvider

// BakeAll bakes chunks with at most workers bakes running at once and
// returns the results in chunks order. Chunks not yet started when ctx is
// cancelled are skipped and ctx's error is returned; bakes already running
// finish.
func BakeAll(ctx context.Context, chunks []*Chunk, layers []LayerDef, reg registry.Resolver, providerFor ProviderFunc, workers int, m *metrics.Bake) ([]BakeResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]BakeResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range chunks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			res := c.Bake(layers, reg, providerFor(c.Pos))
			for name, stats := range res.Layers {
				m.ObserveLayer(name, stats)
			}
			m.ObserveChunk(time.Since(start))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
