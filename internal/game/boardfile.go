package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BoardFile represents the top-level YAML structure.
type BoardFile struct {
	Boards []BoardEntry `yaml:"boards"`
}

// BoardEntry represents a single board in the YAML file.
type BoardEntry struct {
	Name   string                   `yaml:"name"`
	Width  int                      `yaml:"width"`
	Height int                      `yaml:"height"`
	Spawns []Position               `yaml:"spawns"`
	Layers map[string][]RegionEntry `yaml:"layers"`
}

// RegionEntry is a rectangle of tiles, in tile units, tagged with a terrain type.
type RegionEntry struct {
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Type   string `yaml:"type"`
}

// DefaultSpawns are used when a board file lists no spawn positions.
var DefaultSpawns = []Position{{X: 6, Y: 1}, {X: 9, Y: 1}, {X: 13, Y: 1}, {X: 16, Y: 1}}

// ParseBoardFile parses a YAML board file and returns the boards in file order.
func ParseBoardFile(path string) ([]*Board, error) {
	df, err := readBoardFile(path)
	if err != nil {
		return nil, err
	}

	boards := make([]*Board, 0, len(df.Boards))
	for _, entry := range df.Boards {
		b, err := entry.Build()
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, nil
}

// BoardByNumber returns the Nth board (1-indexed) from the board file.
func BoardByNumber(path string, n int) (*Board, error) {
	df, err := readBoardFile(path)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(df.Boards) {
		return nil, fmt.Errorf("board %d not found (have %d boards)", n, len(df.Boards))
	}
	return df.Boards[n-1].Build()
}

// BoardByName returns the board with the given name from the board file.
func BoardByName(path, name string) (*Board, error) {
	df, err := readBoardFile(path)
	if err != nil {
		return nil, err
	}
	for _, entry := range df.Boards {
		if entry.Name == name {
			return entry.Build()
		}
	}
	return nil, fmt.Errorf("board %q not found", name)
}

// DecodeBoardFile parses board YAML that is already in memory.
func DecodeBoardFile(data []byte) (BoardFile, error) {
	var df BoardFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return BoardFile{}, fmt.Errorf("parse board YAML: %w", err)
	}
	return df, nil
}

func readBoardFile(path string) (BoardFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BoardFile{}, err
	}
	return DecodeBoardFile(data)
}

// Build converts a YAML entry into a Board, rejecting unknown type tags and
// overlapping regions within a layer.
func (e BoardEntry) Build() (*Board, error) {
	if e.Width <= 0 || e.Height <= 0 {
		return nil, fmt.Errorf("board %q: invalid size %dx%d", e.Name, e.Width, e.Height)
	}
	b := NewBoard(e.Name, e.Width, e.Height)
	b.Spawns = append(b.Spawns, e.Spawns...)
	if len(b.Spawns) == 0 {
		b.Spawns = append(b.Spawns, DefaultSpawns...)
	}

	for name, regions := range e.Layers {
		layer := Layer(name)
		switch layer {
		case LayerWalls, LayerMovers, LayerEvents:
		default:
			return nil, fmt.Errorf("board %q: unknown layer %q", e.Name, layer)
		}
		for _, r := range regions {
			w, h := r.Width, r.Height
			if w == 0 {
				w = 1
			}
			if h == 0 {
				h = 1
			}
			if w < 0 || h < 0 {
				return nil, fmt.Errorf("board %q: region %s at (%d,%d) has negative size", e.Name, r.Type, r.X, r.Y)
			}
			for dx := 0; dx < w; dx++ {
				for dy := 0; dy < h; dy++ {
					if err := b.Place(layer, Position{X: r.X + dx, Y: r.Y + dy}, r.Type); err != nil {
						return nil, fmt.Errorf("board %q: %w", e.Name, err)
					}
				}
			}
		}
	}
	return b, nil
}
