package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// Feature is one record of a memory layer: a representative coordinate and
// its attributes. The built-in engine works on representative points only;
// real geometry processing belongs to an external engine behind the Engine
// interface.
type Feature struct {
	X, Y  float64
	Attrs map[string]string
}

// MemoryLayer is the built-in Layer implementation.
type MemoryLayer struct {
	id       string
	crs      string
	kind     GeometryKind
	Features []Feature
}

func NewMemoryLayer(id, crs string, kind GeometryKind, features []Feature) *MemoryLayer {
	return &MemoryLayer{id: id, crs: crs, kind: kind, Features: features}
}

func (l *MemoryLayer) ID() string                 { return l.id }
func (l *MemoryLayer) CRS() string                { return l.crs }
func (l *MemoryLayer) GeometryKind() GeometryKind { return l.kind }
func (l *MemoryLayer) FeatureCount() int          { return len(l.Features) }

// WithID returns a shallow copy of the layer under a new id.
func (l *MemoryLayer) WithID(id string) *MemoryLayer {
	return &MemoryLayer{id: id, crs: l.crs, kind: l.kind, Features: l.Features}
}

// MemoryTable is the built-in Table implementation.
type MemoryTable struct {
	id      string
	columns []string
	Rows    [][]string
}

func NewMemoryTable(id string, columns []string, rows [][]string) *MemoryTable {
	return &MemoryTable{id: id, columns: columns, Rows: rows}
}

func (t *MemoryTable) ID() string        { return t.id }
func (t *MemoryTable) Columns() []string { return t.columns }
func (t *MemoryTable) RowCount() int     { return len(t.Rows) }

// MemoryEngine implements Engine over memory layers. Algorithms: merge,
// clip (bounding box over representative points), reproject (retags the CRS;
// coordinate transformation is out of scope for the built-in engine).
type MemoryEngine struct{}

func NewMemoryEngine() *MemoryEngine { return &MemoryEngine{} }

func (e *MemoryEngine) RunAlgorithm(name string, params map[string]string, inputs map[string]Layer) (map[string]Layer, error) {
	mem := make(map[string]*MemoryLayer, len(inputs))
	for key, l := range inputs {
		ml, ok := l.(*MemoryLayer)
		if !ok {
			return nil, fmt.Errorf("algorithm %q: input %q is not a memory layer", name, key)
		}
		mem[key] = ml
	}

	switch name {
	case "merge":
		return e.merge(params, mem)
	case "clip":
		return e.clip(params, mem)
	case "reproject":
		return e.reproject(params, mem)
	default:
		return nil, fmt.Errorf("unknown algorithm %q", name)
	}
}

func (e *MemoryEngine) merge(params map[string]string, inputs map[string]*MemoryLayer) (map[string]Layer, error) {
	a, b := inputs["a"], inputs["b"]
	if a == nil || b == nil {
		return nil, fmt.Errorf("merge: inputs %q and %q required", "a", "b")
	}
	features := make([]Feature, 0, len(a.Features)+len(b.Features))
	features = append(features, a.Features...)
	features = append(features, b.Features...)
	out := NewMemoryLayer(params["output"], a.crs, a.kind, features)
	return map[string]Layer{"output": out}, nil
}

func (e *MemoryEngine) clip(params map[string]string, inputs map[string]*MemoryLayer) (map[string]Layer, error) {
	in, mask := inputs["input"], inputs["mask"]
	if in == nil || mask == nil {
		return nil, fmt.Errorf("clip: inputs %q and %q required", "input", "mask")
	}
	minX, minY, maxX, maxY, err := bounds(mask)
	if err != nil {
		return nil, fmt.Errorf("clip: %w", err)
	}
	var kept []Feature
	for _, f := range in.Features {
		if f.X >= minX && f.X <= maxX && f.Y >= minY && f.Y <= maxY {
			kept = append(kept, f)
		}
	}
	out := NewMemoryLayer(params["output"], in.crs, in.kind, kept)
	return map[string]Layer{"output": out}, nil
}

func (e *MemoryEngine) reproject(params map[string]string, inputs map[string]*MemoryLayer) (map[string]Layer, error) {
	in := inputs["input"]
	if in == nil {
		return nil, fmt.Errorf("reproject: input %q required", "input")
	}
	crs := params["crs"]
	if crs == "" {
		return nil, fmt.Errorf("reproject: parameter %q required", "crs")
	}
	out := NewMemoryLayer(params["output"], crs, in.kind, in.Features)
	return map[string]Layer{"output": out}, nil
}

func bounds(l *MemoryLayer) (minX, minY, maxX, maxY float64, err error) {
	if len(l.Features) == 0 {
		return 0, 0, 0, 0, fmt.Errorf("mask layer %q has no features", l.id)
	}
	minX, maxX = l.Features[0].X, l.Features[0].X
	minY, maxY = l.Features[0].Y, l.Features[0].Y
	for _, f := range l.Features[1:] {
		if f.X < minX {
			minX = f.X
		}
		if f.X > maxX {
			maxX = f.X
		}
		if f.Y < minY {
			minY = f.Y
		}
		if f.Y > maxY {
			maxY = f.Y
		}
	}
	return minX, minY, maxX, maxY, nil
}

// ValidCRSRef reports whether s looks like an authority:code coordinate
// system reference, e.g. EPSG:4326.
func ValidCRSRef(s string) bool {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return false
	}
	for _, r := range parts[0] {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			return false
		}
	}
	_, err := strconv.Atoi(parts[1])
	return err == nil
}
