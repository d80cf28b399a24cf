package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sort"
	"time"

	"mc-bake/internal/assettest"
	"mc-bake/internal/config"
	"mc-bake/internal/graphics"
	"mc-bake/internal/metrics"
	"mc-bake/internal/profiling"
	"mc-bake/internal/registry"
	"mc-bake/internal/terrain"
	"mc-bake/internal/world"
	"mc-bake/pkg/blockmodel"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

type options struct {
	configPath string
	assetsPath string
	facing     string
	upload     bool
	terrain    bool
	fixtures   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to YAML config (default $BAKE_CONFIG)")
	flag.StringVar(&opts.assetsPath, "assets", "", "assets directory, overrides the config")
	flag.StringVar(&opts.facing, "facing", "north", "facing of the demo anvil")
	flag.BoolVar(&opts.upload, "upload", false, "upload to an OpenGL device instead of host memory")
	flag.BoolVar(&opts.terrain, "terrain", false, "also generate and bake a terrain area")
	flag.BoolVar(&opts.fixtures, "fixtures", false, "write built-in test assets to a temp dir and use them")
	flag.Parse()

	closer.Bind(func() {
		log.Println(profiling.TopN(8))
	})

	if err := run(opts, os.Stdout); err != nil {
		closer.Fatalln(err)
	}
	closer.Close()
}

func run(opts options, out io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	config.Apply(cfg)

	assets := cfg.AssetsPath()
	if opts.assetsPath != "" {
		assets = opts.assetsPath
	}
	if opts.fixtures {
		dir, err := os.MkdirTemp("", "bake-assets")
		if err != nil {
			return err
		}
		closer.Bind(func() { os.RemoveAll(dir) })
		if err := assettest.Write(dir); err != nil {
			return err
		}
		assets = dir
	}

	var device graphics.Device
	if opts.upload {
		glDevice, release, err := setupGL(cfg.DeviceBudgetBytes())
		if err != nil {
			return fmt.Errorf("setup gl: %w", err)
		}
		closer.Bind(release)
		device = glDevice
	} else {
		device = graphics.NewMemoryDevice(cfg.DeviceBudgetBytes())
	}

	loader := blockmodel.NewLoader(assets)
	reg := registry.NewBlockManager(loader)
	if _, err := registry.RegisterFromAssets(reg, loader, blockSpecs(cfg)); err != nil {
		log.Printf("Warning: %v", err)
	}

	if err := bakeAnvil(reg, device, opts.facing, out); err != nil {
		return err
	}
	if opts.terrain {
		return bakeTerrain(cfg, reg, out)
	}
	return nil
}

func blockSpecs(cfg *config.Config) []registry.BlockSpec {
	if len(cfg.Assets.Blocks) == 0 {
		return registry.DefaultBlocks
	}
	specs := make([]registry.BlockSpec, len(cfg.Assets.Blocks))
	for i, b := range cfg.Assets.Blocks {
		specs[i] = registry.BlockSpec{Name: b.Name, Transparent: b.Transparent}
	}
	return specs
}

func stateOf(reg registry.Registry, name string, overrides map[string]string) (world.ChunkBlockState, error) {
	block, augment, err := registry.DefaultState(reg, name, overrides)
	if err != nil {
		return world.Absent(), err
	}
	return world.State(world.BlockStateKey{Block: block, Augment: augment}), nil
}

func bakeAnvil(reg *registry.BlockManager, device graphics.Device, facing string, out io.Writer) error {
	anvil, err := stateOf(reg, "anvil", map[string]string{"facing": facing})
	if err != nil {
		return err
	}

	chunk := terrain.NewChunk(world.ChunkPos{})
	start := time.Now()
	res := chunk.Bake(terrain.DefaultLayers(), reg, world.NewSingleBlockProvider(anvil))
	fmt.Fprintf(out, "Built 1 chunk in %d microseconds\n", time.Since(start).Microseconds())

	buffers, err := chunk.Upload(device)
	if err != nil {
		return err
	}
	defer func() {
		for _, b := range buffers {
			b.Release()
		}
	}()

	for _, name := range chunk.LayerNames() {
		b := buffers[name]
		fmt.Fprintf(out, "  %-12s %5d vertices (other %d)\n", name, b.VertexCount(), b.Other().VertexCount)
	}
	fmt.Fprintf(out, "  unresolved cells: %d\n", unresolved(res))
	return nil
}

func unresolved(res terrain.BakeResult) int {
	n := 0
	for _, stats := range res.Layers {
		n += stats.Unresolved
	}
	return n
}

func bakeTerrain(cfg *config.Config, reg *registry.BlockManager, out io.Writer) error {
	fill, err := stateOf(reg, "stone", nil)
	if err != nil {
		return err
	}
	surface, err := stateOf(reg, "grass", nil)
	if err != nil {
		surface = fill
	}
	floor, err := stateOf(reg, "bedrock", nil)
	if err != nil {
		floor = fill
	}

	store := world.NewChunkStore()
	world.NewGenerator(cfg.World.Seed).PopulateStore(store, config.GetChunkRadius(), world.Palette{Floor: floor, Fill: fill, Surface: surface})
	positions := store.Positions()

	promReg := prometheus.NewRegistry()
	m := metrics.MustNewBake(promReg)
	if addr := cfg.MetricsAddr(); addr != "" {
		srv := metrics.Serve(addr, promReg)
		closer.Bind(func() { srv.Close() })
	}

	pool := terrain.NewWorkerPool(config.GetWorkers(), cfg.QueueSize(), terrain.DefaultLayers(), reg, m)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	submitErr := make(chan error, 1)
	go func() {
		for _, pos := range positions {
			job := terrain.BakeJob{Chunk: terrain.NewChunk(pos), Provider: store.Provider(pos)}
			if err := pool.SubmitWait(ctx, job); err != nil {
				submitErr <- err
				return
			}
		}
		submitErr <- nil
	}()

	start := time.Now()
	vertices := 0
	var slowest []terrain.JobResult
	for range positions {
		res := <-pool.Results()
		if res.Err != nil {
			cancel()
			pool.Shutdown()
			return res.Err
		}
		vertices += res.Vertices()
		slowest = append(slowest, res)
	}
	if err := <-submitErr; err != nil {
		pool.Shutdown()
		return err
	}
	pool.Close()

	sort.Slice(slowest, func(i, j int) bool { return slowest[i].Duration > slowest[j].Duration })
	fmt.Fprintf(out, "Built %d chunks (%d vertices) in %v\n", len(positions), vertices, time.Since(start).Round(time.Millisecond))
	if len(slowest) > 0 {
		fmt.Fprintf(out, "  slowest chunk %v: %v\n", slowest[0].Pos, slowest[0].Duration.Round(time.Microsecond))
	}
	if usage, err := metrics.ProcessUsage(); err == nil {
		fmt.Fprintf(out, "  rss %.1fMB cpu %.1f%%\n", usage.RSSMegabytes(), usage.CPUPercent)
	}
	return nil
}
