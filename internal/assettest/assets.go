// Package assettest writes a small block asset tree for tests: a handful of
// cube, partial and multipart blocks with their models.
package assettest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Face vertex counts of the fixture models. Every declared face is two triangles.
const (
	VerticesPerFace = 6
	AnvilBase       = 6 * VerticesPerFace
	AnvilTopNorth   = 6 * VerticesPerFace
	AnvilTopSouth   = 4 * VerticesPerFace
)

// Blocks lists the fixture blocks that have blockstates. missing_model
// references a model that does not exist.
var Blocks = []string{"stone", "dirt", "grass", "glass", "furnace", "slab", "no_north", "anvil", "missing_model"}

func faces(dirs []string, tex func(dir string) string) string {
	parts := make([]string, len(dirs))
	for i, d := range dirs {
		parts[i] = fmt.Sprintf(`"%s": {"texture": "%s", "cullface": "%s"}`, d, tex(d), d)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

var allDirs = []string{"down", "up", "north", "south", "west", "east"}

func same(t string) func(string) string { return func(string) string { return t } }

func element(from, to [3]int, dirs []string, tex func(string) string) string {
	return fmt.Sprintf(`{"from": [%d, %d, %d], "to": [%d, %d, %d], "faces": %s}`,
		from[0], from[1], from[2], to[0], to[1], to[2], faces(dirs, tex))
}

func files() map[string]string {
	full := [3]int{16, 16, 16}
	zero := [3]int{0, 0, 0}
	return map[string]string{
		"models/block/cube_all.json": `{"textures": {"particle": "#all"}, "elements": [` +
			element(zero, full, allDirs, same("#all")) + `]}`,
		"models/block/stone.json": `{"parent": "block/cube_all", "textures": {"all": "block/stone"}}`,
		"models/block/dirt.json":  `{"parent": "minecraft:block/cube_all", "textures": {"all": "block/dirt"}}`,
		"models/block/glass.json": `{"parent": "block/cube_all", "textures": {"all": "block/glass"}}`,
		"models/block/grass.json": `{"textures": {"top": "block/grass_top", "side": "block/grass_side", "bottom": "block/dirt"}, "elements": [` +
			element(zero, full, allDirs, func(d string) string {
				switch d {
				case "up":
					return "#top"
				case "down":
					return "#bottom"
				}
				return "#side"
			}) + `]}`,
		"models/block/furnace.json": `{"textures": {"front": "block/furnace_front", "side": "block/furnace_side"}, "elements": [` +
			element(zero, full, allDirs, func(d string) string {
				if d == "north" {
					return "#front"
				}
				return "#side"
			}) + `]}`,
		"models/block/slab.json": `{"textures": {"all": "block/stone"}, "elements": [` +
			element(zero, [3]int{16, 8, 16}, allDirs, same("#all")) + `]}`,
		"models/block/no_north.json": `{"textures": {"all": "block/stone"}, "elements": [` +
			element(zero, full, []string{"down", "up", "south", "west", "east"}, same("#all")) + `]}`,
		"models/block/anvil_base.json": `{"textures": {"body": "block/anvil"}, "elements": [` +
			element([3]int{2, 0, 2}, [3]int{14, 4, 14}, allDirs, same("#body")) + `]}`,
		"models/block/anvil_top_north.json": `{"textures": {"top": "block/anvil_top"}, "elements": [` +
			element([3]int{3, 10, 0}, [3]int{13, 16, 16}, allDirs, same("#top")) + `]}`,
		"models/block/anvil_top_south.json": `{"textures": {"top": "block/anvil_top"}, "elements": [` +
			element([3]int{3, 10, 0}, [3]int{13, 16, 16}, []string{"up", "down", "east", "west"}, same("#top")) + `]}`,

		"blockstates/stone.json":   `{"variants": {"": {"model": "block/stone"}}}`,
		"blockstates/dirt.json":    `{"variants": {"normal": {"model": "block/dirt"}}}`,
		"blockstates/grass.json":   `{"variants": {"snowy=false": {"model": "block/grass"}, "snowy=true": {"model": "block/dirt"}}}`,
		"blockstates/glass.json":   `{"variants": {"": {"model": "block/glass"}}}`,
		"blockstates/slab.json":    `{"variants": {"": {"model": "block/slab"}}}`,
		"blockstates/no_north.json": `{"variants": {"": {"model": "block/no_north"}}}`,
		"blockstates/furnace.json": `{"variants": {
			"facing=north": {"model": "block/furnace"},
			"facing=east": {"model": "block/furnace", "y": 90},
			"facing=south": {"model": "block/furnace", "y": 180},
			"facing=west": {"model": "block/furnace", "y": 270}
		}}`,
		"blockstates/anvil.json": `{"multipart": [
			{"apply": {"model": "block/anvil_base"}},
			{"when": {"facing": "north"}, "apply": {"model": "block/anvil_top_north"}},
			{"when": {"OR": [{"facing": "south"}, {"facing": "east|west"}]}, "apply": {"model": "block/anvil_top_south"}}
		]}`,
		"blockstates/missing_model.json": `{"variants": {"": {"model": "block/does_not_exist"}}}`,
	}
}

// Write writes the fixture tree under root.
func Write(root string) error {
	for name, content := range files() {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
