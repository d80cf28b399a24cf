package blockmodel

import (
	"encoding/json"
	"fmt"
)

type Model struct {
	Parent           string            `json:"parent"`
	AmbientOcclusion *bool             `json:"ambientocclusion"`
	Textures         map[string]string `json:"textures"`
	Elements         []Element         `json:"elements"`
}

type Element struct {
	From     [3]float32      `json:"from"`
	To       [3]float32      `json:"to"`
	Rotation *Rotation       `json:"rotation"`
	Shade    *bool           `json:"shade"`
	Faces    map[string]Face `json:"faces"`
}

// IsFullCube reports whether the element spans the whole block without rotation.
func (e Element) IsFullCube() bool {
	const epsilon = 0.001
	if e.Rotation != nil && e.Rotation.Angle != 0 {
		return false
	}
	for i := 0; i < 3; i++ {
		if e.From[i] > epsilon || e.From[i] < -epsilon || e.To[i] < 16-epsilon || e.To[i] > 16+epsilon {
			return false
		}
	}
	return true
}

type Rotation struct {
	Origin  [3]float32 `json:"origin"`
	Angle   float32    `json:"angle"`
	Axis    string     `json:"axis"`
	Rescale bool       `json:"rescale"`
}

type Face struct {
	UV        *[4]float32 `json:"uv"`
	Texture   string      `json:"texture"`
	CullFace  string      `json:"cullface"`
	Rotation  int         `json:"rotation"`
	TintIndex *int        `json:"tintindex"`
}

// BlockState defines the blockstate JSON structure. A block uses either
// Variants (attribute string -> models) or Multipart (conditional parts).
type BlockState struct {
	Variants  map[string]VariantList `json:"variants,omitempty"`
	Multipart []MultipartCase        `json:"multipart,omitempty"`
}

// VariantList handles the fact that a variant or an "apply" field can hold
// either a single object or an array of weighted objects.
type VariantList []Variant

func (v *VariantList) UnmarshalJSON(data []byte) error {
	var variants []Variant
	if err := json.Unmarshal(data, &variants); err == nil {
		*v = variants
		return nil
	}

	var single Variant
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*v = VariantList{single}
	return nil
}

// Variant is one model reference with its rotation.
type Variant struct {
	Model  string `json:"model"`
	X      int    `json:"x,omitempty"`
	Y      int    `json:"y,omitempty"`
	UVLock bool   `json:"uvlock,omitempty"`
	Weight int    `json:"weight,omitempty"`
}

// MultipartCase applies its models when the condition holds. A nil When
// always applies.
type MultipartCase struct {
	When  *Condition  `json:"when,omitempty"`
	Apply VariantList `json:"apply"`
}

// Condition is a multipart "when" clause: either an OR/AND of nested
// conditions, or a set of attribute tests whose values may list
// alternatives separated by '|'.
type Condition struct {
	OR         []Condition
	AND        []Condition
	Properties map[string]string
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		switch key {
		case "OR":
			if err := json.Unmarshal(value, &c.OR); err != nil {
				return fmt.Errorf("invalid OR clause: %w", err)
			}
		case "AND":
			if err := json.Unmarshal(value, &c.AND); err != nil {
				return fmt.Errorf("invalid AND clause: %w", err)
			}
		default:
			if c.Properties == nil {
				c.Properties = make(map[string]string)
			}
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				// Older files write booleans and numbers unquoted
				var scalar any
				if err := json.Unmarshal(value, &scalar); err != nil {
					return fmt.Errorf("invalid value for %q: %w", key, err)
				}
				s = fmt.Sprint(scalar)
			}
			c.Properties[key] = s
		}
	}
	return nil
}

func (c Condition) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Properties)+2)
	for k, v := range c.Properties {
		out[k] = v
	}
	if len(c.OR) > 0 {
		out["OR"] = c.OR
	}
	if len(c.AND) > 0 {
		out["AND"] = c.AND
	}
	return json.Marshal(out)
}
