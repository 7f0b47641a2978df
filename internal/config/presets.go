package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"fileforge/internal/common"
	"fileforge/internal/domain/transform"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultPresets []byte

// Presets holds the platform limits, icon sizes and quality presets.
type Presets struct {
	Platforms map[string]int64                 `yaml:"platforms"`
	Icons     map[transform.Platform][]int     `yaml:"icons"`
	Quality   map[transform.QualityPreset]int `yaml:"quality"`
}

// ParsePresets decodes a presets document.
func ParsePresets(data []byte) (*Presets, error) {
	var p Presets
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	for name, limit := range p.Platforms {
		if limit <= 0 {
			return nil, fmt.Errorf("platform %s: limit must be positive", name)
		}
	}
	for preset, q := range p.Quality {
		if q < 1 || q > 100 {
			return nil, fmt.Errorf("quality preset %s: %d outside 1..100", preset, q)
		}
	}
	return &p, nil
}

// DefaultPresets returns the built-in presets.
func DefaultPresets() *Presets {
	p, err := ParsePresets(defaultPresets)
	if err != nil {
		panic(err)
	}
	return p
}

// PlatformLimit returns the attachment limit for a named platform.
func (p *Presets) PlatformLimit(name string) (int64, error) {
	limit, ok := p.Platforms[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %s", common.ErrUnknownPlatform, name)
	}
	return limit, nil
}

// PlatformNames lists the known platforms alphabetically.
func (p *Presets) PlatformNames() []string {
	names := make([]string, 0, len(p.Platforms))
	for name := range p.Platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IconSizes returns the preset sizes for an icon platform.
func (p *Presets) IconSizes(platform transform.Platform) []int {
	return p.Icons[platform]
}

// QualityFor resolves a preset, falling back to balanced.
func (p *Presets) QualityFor(preset transform.QualityPreset) int {
	if q, ok := p.Quality[preset]; ok {
		return q
	}
	if q, ok := p.Quality[transform.PresetBalanced]; ok {
		return q
	}
	return 80
}
