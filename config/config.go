// Package config loads collider2d WorldConfig and TileMapDesc values
// from YAML, so tuning knobs can live outside source the way the rest
// of this ecosystem's game-engine configs do.
package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixelguild/collider2d"
	"gopkg.in/yaml.v3"
)

// LoadWorldConfig unmarshals a YAML document into a WorldConfig.
// Decoding starts from collider2d.DefaultWorldConfig(), so fields
// absent from the document keep their default values.
func LoadWorldConfig(data []byte) (collider2d.WorldConfig, error) {
	cfg := collider2d.DefaultWorldConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return collider2d.WorldConfig{}, fmt.Errorf("config: yaml %w", err)
	}
	return cfg, nil
}

// tileMapDescYAML mirrors collider2d.TileMapDesc with plain fields so
// it can be unmarshalled without exposing mgl32 types to the YAML tag
// surface.
type tileMapDescYAML struct {
	OriginX  float32 `yaml:"origin_x"`
	OriginY  float32 `yaml:"origin_y"`
	CellSize float32 `yaml:"cell_size"`
	Width    int32   `yaml:"width"`
	Height   int32   `yaml:"height"`
	Solids   []byte  `yaml:"solids"`
	Layer    uint32  `yaml:"layer"`
}

// LoadTileMapDesc unmarshals a YAML document describing a static tile
// grid into a collider2d.TileMapDesc ready for World.AttachTilemap.
func LoadTileMapDesc(data []byte) (collider2d.TileMapDesc, error) {
	var raw tileMapDescYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return collider2d.TileMapDesc{}, fmt.Errorf("config: yaml %w", err)
	}
	if int(raw.Width*raw.Height) != len(raw.Solids) {
		return collider2d.TileMapDesc{}, fmt.Errorf("config: tilemap solids length %d does not match %d*%d", len(raw.Solids), raw.Width, raw.Height)
	}
	return collider2d.TileMapDesc{
		Origin:   mgl32.Vec2{raw.OriginX, raw.OriginY},
		CellSize: raw.CellSize,
		Width:    raw.Width,
		Height:   raw.Height,
		Solids:   raw.Solids,
		Mask:     collider2d.LayerMask{Layer: raw.Layer, CollidesWith: raw.Layer, Exclude: 0},
	}, nil
}
