package blockmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when a model or blockstate file does not exist.
var ErrNotFound = errors.New("blockmodel: not found")

type Loader struct {
	assetsPath string

	mu         sync.Mutex
	modelCache map[string]*Model
}

func NewLoader(assetsPath string) *Loader {
	return &Loader{
		assetsPath: assetsPath,
		modelCache: make(map[string]*Model),
	}
}

// stripNamespace drops a "minecraft:" style prefix.
func stripNamespace(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func normalizeModelName(name string) string {
	name = stripNamespace(name)
	if !strings.Contains(name, "/") {
		name = "block/" + name
	}
	return name
}

func (l *Loader) LoadModel(name string) (*Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadModel(normalizeModelName(name))
}

func (l *Loader) loadModel(name string) (*Model, error) {
	if model, ok := l.modelCache[name]; ok {
		return model, nil
	}

	path := filepath.Join(l.assetsPath, "models", name+".json")

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("model %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read model file: %w", err)
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("could not unmarshal model json: %w", err)
	}
	if model.Textures == nil {
		model.Textures = make(map[string]string)
	}

	if model.Parent != "" && !strings.HasPrefix(stripNamespace(model.Parent), "builtin/") {
		parentName := normalizeModelName(model.Parent)
		parent, err := l.loadModel(parentName)
		if err != nil {
			return nil, fmt.Errorf("could not load parent model '%s': %w", parentName, err)
		}

		if model.AmbientOcclusion == nil {
			model.AmbientOcclusion = parent.AmbientOcclusion
		}
		if len(model.Elements) == 0 {
			model.Elements = cloneElements(parent.Elements)
		}
		for key, val := range parent.Textures {
			if _, ok := model.Textures[key]; !ok {
				model.Textures[key] = val
			}
		}
	}

	l.resolveTextures(&model)
	l.modelCache[name] = &model
	return &model, nil
}

// cloneElements copies elements and their face maps so that resolving a
// child's textures never writes into the cached parent.
func cloneElements(src []Element) []Element {
	out := make([]Element, len(src))
	for i, e := range src {
		out[i] = e
		out[i].Faces = make(map[string]Face, len(e.Faces))
		for k, f := range e.Faces {
			out[i].Faces[k] = f
		}
	}
	return out
}

func (l *Loader) resolveTextures(m *Model) {
	for i := range m.Elements {
		for faceName, face := range m.Elements[i].Faces {
			originalTexture := face.Texture
			resolvedTexture := l.ResolveTexture(originalTexture, m)
			if resolvedTexture != originalTexture {
				face.Texture = resolvedTexture
				m.Elements[i].Faces[faceName] = face
			}
		}
	}
}

// ResolveTexture follows "#name" references through the model's texture map.
func (l *Loader) ResolveTexture(textureName string, m *Model) string {
	for i := 0; i < 10 && strings.HasPrefix(textureName, "#"); i++ {
		key := strings.TrimPrefix(textureName, "#")
		if resolved, ok := m.Textures[key]; ok {
			textureName = resolved
		} else {
			break
		}
	}
	return textureName
}

// LoadBlockState reads and validates blockstates/<name>.json.
func (l *Loader) LoadBlockState(name string) (*BlockState, error) {
	name = stripNamespace(name)
	path := filepath.Join(l.assetsPath, "blockstates", name+".json")

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("blockstate %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read blockstate file: %w", err)
	}
	return ParseBlockState(data)
}

// ParseBlockState validates a blockstate document against the schema and decodes it.
func ParseBlockState(data []byte) (*BlockState, error) {
	if err := ValidateBlockState(data); err != nil {
		return nil, err
	}

	var blockState BlockState
	if err := json.Unmarshal(data, &blockState); err != nil {
		return nil, fmt.Errorf("could not unmarshal blockstate json: %w", err)
	}
	return &blockState, nil
}
