package registry

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"mc-bake/internal/world"
	"mc-bake/pkg/blockmodel"
)

var (
	ErrBlockNotFound     = errors.New("registry: block not found")
	ErrModelNotFound     = errors.New("registry: model not found")
	ErrAttributeNotFound = errors.New("registry: attribute not found")
	ErrNoMatchingVariant = errors.New("registry: no variant matches attributes")
	ErrTooManyAugments   = errors.New("registry: augment space exhausted")
)

var logger = log.New(os.Stderr, "[registry] ", log.LstdFlags)

// Resolver is the read side the baker needs.
type Resolver interface {
	Resolve(key world.BlockStateKey) (Attributes, *BlockVariant, bool)
}

// Registry is the full block/model registry contract.
type Registry interface {
	Resolver
	LookupBlockIndex(name string) (uint16, bool)
	BuildModel(block uint16, overrides map[string]string) (Attributes, uint16, error)
}

// ModelSource loads block models by name. *blockmodel.Loader implements it.
type ModelSource interface {
	LoadModel(name string) (*blockmodel.Model, error)
}

// BlockDefinition describes a block type before any of its states are built.
type BlockDefinition struct {
	Name string
	// Transparent blocks never hide their neighbors' faces.
	Transparent bool
	State       *blockmodel.BlockState
}

type blockEntry struct {
	index      uint16
	def        BlockDefinition
	properties map[string][]string
	defaults   Attributes
	augments   []*ResolvedState
	byAttrs    map[string]uint16
}

// Snapshot is an immutable view of the registry. Readers keep using the
// snapshot they loaded even while a writer publishes a newer one.
type Snapshot struct {
	blocks       []*blockEntry
	names        map[string]uint16
	textures     map[string]uint32
	textureNames []string
}

// Resolve returns the attributes and variant for a state key.
func (s *Snapshot) Resolve(key world.BlockStateKey) (Attributes, *BlockVariant, bool) {
	if int(key.Block) >= len(s.blocks) {
		return nil, nil, false
	}
	entry := s.blocks[key.Block]
	if int(key.Augment) >= len(entry.augments) {
		return nil, nil, false
	}
	st := entry.augments[key.Augment]
	return st.Attributes, st.Variant, true
}

// LookupBlockIndex finds a block by name, with or without namespace.
func (s *Snapshot) LookupBlockIndex(name string) (uint16, bool) {
	idx, ok := s.names[normalizeName(name)]
	return idx, ok
}

// BlockCount returns the number of registered block types.
func (s *Snapshot) BlockCount() int {
	return len(s.blocks)
}

// StateCount returns the number of built states of a block.
func (s *Snapshot) StateCount(block uint16) int {
	if int(block) >= len(s.blocks) {
		return 0
	}
	return len(s.blocks[block].augments)
}

// TextureNames returns texture names in atlas layer order.
func (s *Snapshot) TextureNames() []string {
	return append([]string(nil), s.textureNames...)
}

// Texture returns the atlas layer index of a texture.
func (s *Snapshot) Texture(name string) (uint32, bool) {
	idx, ok := s.textures[name]
	return idx, ok
}

// BlockManager owns the registry. Reads go through an atomically loaded
// snapshot and never lock; writes copy the table, modify the copy and swap
// it in under mu.
type BlockManager struct {
	models  ModelSource
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewBlockManager creates an empty registry that loads models from models.
func NewBlockManager(models ModelSource) *BlockManager {
	m := &BlockManager{models: models}
	m.current.Store(&Snapshot{
		names:    make(map[string]uint16),
		textures: make(map[string]uint32),
	})
	return m
}

// Snapshot returns the current immutable registry view.
func (m *BlockManager) Snapshot() *Snapshot {
	return m.current.Load()
}

func (m *BlockManager) Resolve(key world.BlockStateKey) (Attributes, *BlockVariant, bool) {
	return m.Snapshot().Resolve(key)
}

func (m *BlockManager) LookupBlockIndex(name string) (uint16, bool) {
	return m.Snapshot().LookupBlockIndex(name)
}

func normalizeName(name string) string {
	if !strings.Contains(name, ":") {
		return "minecraft:" + name
	}
	return name
}

// RegisterBlock adds a block type and returns its index. Registering a name
// twice returns the existing index.
func (m *BlockManager) RegisterBlock(def BlockDefinition) (uint16, error) {
	if def.State == nil {
		return 0, fmt.Errorf("block %q has no blockstate definition", def.Name)
	}
	name := normalizeName(def.Name)

	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.Snapshot()
	if idx, ok := old.names[name]; ok {
		return idx, nil
	}
	if len(old.blocks) > 0xFFFF {
		return 0, fmt.Errorf("block %q: too many block types", name)
	}

	def.Name = name
	properties, defaults := collectProperties(def.State)
	entry := &blockEntry{
		index:      uint16(len(old.blocks)),
		def:        def,
		properties: properties,
		defaults:   defaults,
		byAttrs:    make(map[string]uint16),
	}

	next := *old
	next.blocks = append(append([]*blockEntry(nil), old.blocks...), entry)
	next.names = make(map[string]uint16, len(old.names)+1)
	for k, v := range old.names {
		next.names[k] = v
	}
	next.names[name] = entry.index
	m.current.Store(&next)
	return entry.index, nil
}

// collectProperties gathers the attribute names and values a blockstate
// mentions. Variant blocks default to the attributes of their first variant
// key in sorted order; multipart blocks have no defaults.
func collectProperties(bs *blockmodel.BlockState) (map[string][]string, Attributes) {
	props := make(map[string][]string)
	add := func(k, v string) {
		for _, existing := range props[k] {
			if existing == v {
				return
			}
		}
		props[k] = append(props[k], v)
	}

	defaults := make(Attributes)
	if len(bs.Variants) > 0 {
		keys := sortedVariantKeys(bs)
		for _, key := range keys {
			for k, v := range ParseAttributes(key) {
				add(k, v)
			}
		}
		defaults = ParseAttributes(keys[0])
		return props, defaults
	}

	var walk func(c *blockmodel.Condition)
	walk = func(c *blockmodel.Condition) {
		if c == nil {
			return
		}
		for k, v := range c.Properties {
			for _, alt := range strings.Split(v, "|") {
				add(k, alt)
			}
		}
		for i := range c.OR {
			walk(&c.OR[i])
		}
		for i := range c.AND {
			walk(&c.AND[i])
		}
	}
	for _, part := range bs.Multipart {
		walk(part.When)
	}
	return props, defaults
}

func sortedVariantKeys(bs *blockmodel.BlockState) []string {
	keys := make([]string, 0, len(bs.Variants))
	for k := range bs.Variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildModel resolves a block's attributes (defaults overridden by
// overrides), builds the matching geometry and returns the attributes with
// the augment index that addresses them. Building the same attributes again
// returns the same augment.
func (m *BlockManager) BuildModel(block uint16, overrides map[string]string) (Attributes, uint16, error) {
	snap := m.Snapshot()
	if int(block) >= len(snap.blocks) {
		return nil, 0, fmt.Errorf("block index %d: %w", block, ErrBlockNotFound)
	}
	entry := snap.blocks[block]

	attrs := entry.defaults.Clone()
	for k, v := range overrides {
		if _, ok := entry.properties[k]; !ok {
			return nil, 0, fmt.Errorf("block %s attribute %q: %w", entry.def.Name, k, ErrAttributeNotFound)
		}
		attrs[k] = v
	}
	canonical := attrs.Canonical()
	if augment, ok := entry.byAttrs[canonical]; ok {
		return entry.augments[augment].Attributes, augment, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another writer may have built it while we waited
	snap = m.Snapshot()
	entry = snap.blocks[block]
	if augment, ok := entry.byAttrs[canonical]; ok {
		return entry.augments[augment].Attributes, augment, nil
	}
	if len(entry.augments) > 0xFFFF {
		return nil, 0, fmt.Errorf("block %s: %w", entry.def.Name, ErrTooManyAugments)
	}

	next := *snap
	next.textures = make(map[string]uint32, len(snap.textures))
	for k, v := range snap.textures {
		next.textures[k] = v
	}
	next.textureNames = append([]string(nil), snap.textureNames...)
	texture := func(name string) uint32 {
		if idx, ok := next.textures[name]; ok {
			return idx
		}
		idx := uint32(len(next.textureNames))
		next.textures[name] = idx
		next.textureNames = append(next.textureNames, name)
		return idx
	}

	variant, err := m.buildVariant(entry, attrs, texture)
	if err != nil {
		return nil, 0, err
	}

	augment := uint16(len(entry.augments))
	updated := *entry
	updated.augments = append(append([]*ResolvedState(nil), entry.augments...), &ResolvedState{Attributes: attrs, Variant: variant})
	updated.byAttrs = make(map[string]uint16, len(entry.byAttrs)+1)
	for k, v := range entry.byAttrs {
		updated.byAttrs[k] = v
	}
	updated.byAttrs[canonical] = augment

	next.blocks = append([]*blockEntry(nil), snap.blocks...)
	next.blocks[block] = &updated
	m.current.Store(&next)
	return attrs, augment, nil
}

func (m *BlockManager) buildVariant(entry *blockEntry, attrs Attributes, texture textureIndexer) (*BlockVariant, error) {
	bs := entry.def.State

	if len(bs.Variants) > 0 {
		for _, key := range sortedVariantKeys(bs) {
			if !variantKeyMatches(ParseAttributes(key), attrs) {
				continue
			}
			choices := bs.Variants[key]
			if len(choices) == 0 {
				continue
			}
			shape, err := m.loadShape(entry, choices[0], texture)
			if err != nil {
				return nil, err
			}
			return &BlockVariant{
				TransparentOrComplex: entry.def.Transparent || !shape.IsCube(),
				Kind:                 Kind{Shape: shape},
			}, nil
		}
		return nil, fmt.Errorf("block %s [%s]: %w", entry.def.Name, attrs.Canonical(), ErrNoMatchingVariant)
	}

	mp := &Multipart{}
	for _, part := range bs.Multipart {
		if len(part.Apply) == 0 {
			continue
		}
		shape, err := m.loadShape(entry, part.Apply[0], texture)
		if err != nil {
			return nil, err
		}
		mp.Rules = append(mp.Rules, MultipartRule{When: predicateFrom(part.When), Shape: shape})
	}
	return &BlockVariant{TransparentOrComplex: true, Kind: Kind{Multipart: mp}}, nil
}

func (m *BlockManager) loadShape(entry *blockEntry, v blockmodel.Variant, texture textureIndexer) (Shape, error) {
	model, err := m.models.LoadModel(v.Model)
	if err != nil {
		logger.Printf("Warning: failed to load model %s for block %s: %v", v.Model, entry.def.Name, err)
		return Shape{}, fmt.Errorf("block %s model %q: %w: %v", entry.def.Name, v.Model, ErrModelNotFound, err)
	}
	return buildShape(model, v, texture), nil
}

func variantKeyMatches(key, attrs Attributes) bool {
	for k, v := range key {
		if attrs[k] != v {
			return false
		}
	}
	return true
}

func predicateFrom(c *blockmodel.Condition) Predicate {
	if c == nil {
		return Predicate{}
	}
	p := When(c.Properties)
	for i := range c.OR {
		p.Any = append(p.Any, predicateFrom(&c.OR[i]))
	}
	for i := range c.AND {
		p.All = append(p.All, predicateFrom(&c.AND[i]))
	}
	return p
}
