package geo

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileCodec is the built-in Codec: GeoJSON point collections for layers,
// CSV for tables. Richer formats (shapefile, geopackage, spreadsheets) are
// external-collaborator territory.
type FileCodec struct{}

func NewFileCodec() *FileCodec { return &FileCodec{} }

type geoJSON struct {
	Type     string          `json:"type"`
	CRS      *geoJSONCRS     `json:"crs,omitempty"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONCRS struct {
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

type geoJSONFeature struct {
	Type       string            `json:"type"`
	Geometry   geoJSONGeometry   `json:"geometry"`
	Properties map[string]string `json:"properties,omitempty"`
}

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func (c *FileCodec) ReadLayer(path string) (Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layer %s: %w", path, err)
	}
	var doc geoJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse layer %s: %w", path, err)
	}
	if doc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("layer %s: expected FeatureCollection, got %q", path, doc.Type)
	}

	crs := "EPSG:4326"
	if doc.CRS != nil && doc.CRS.Properties["name"] != "" {
		crs = doc.CRS.Properties["name"]
	}

	kind := GeometryUnknown
	features := make([]Feature, 0, len(doc.Features))
	for i, f := range doc.Features {
		if kind == GeometryUnknown && f.Geometry.Type != "" {
			kind = GeometryKind(f.Geometry.Type)
		}
		x, y, err := representativePoint(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("layer %s feature %d: %w", path, i, err)
		}
		features = append(features, Feature{X: x, Y: y, Attrs: f.Properties})
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewMemoryLayer(id, crs, kind, features), nil
}

// representativePoint extracts the first coordinate pair of a geometry,
// whatever its nesting depth.
func representativePoint(g geoJSONGeometry) (float64, float64, error) {
	var raw any
	if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
		return 0, 0, fmt.Errorf("parse coordinates: %w", err)
	}
	for {
		arr, ok := raw.([]any)
		if !ok || len(arr) == 0 {
			return 0, 0, fmt.Errorf("empty or malformed coordinates")
		}
		if x, ok := arr[0].(float64); ok {
			if len(arr) < 2 {
				return 0, 0, fmt.Errorf("coordinate pair too short")
			}
			y, ok := arr[1].(float64)
			if !ok {
				return 0, 0, fmt.Errorf("non-numeric coordinate")
			}
			return x, y, nil
		}
		raw = arr[0]
	}
}

func (c *FileCodec) WriteLayer(l Layer, path, format string) error {
	if format != "" && !strings.EqualFold(format, "geojson") {
		return fmt.Errorf("write layer %s: unsupported format %q", path, format)
	}
	ml, ok := l.(*MemoryLayer)
	if !ok {
		return fmt.Errorf("write layer %s: %q is not a memory layer", path, l.ID())
	}

	doc := geoJSON{
		Type: "FeatureCollection",
		CRS: &geoJSONCRS{
			Type:       "name",
			Properties: map[string]string{"name": ml.CRS()},
		},
		Features: make([]geoJSONFeature, 0, len(ml.Features)),
	}
	for _, f := range ml.Features {
		coords, err := json.Marshal([2]float64{f.X, f.Y})
		if err != nil {
			return fmt.Errorf("write layer %s: %w", path, err)
		}
		doc.Features = append(doc.Features, geoJSONFeature{
			Type:       "Feature",
			Geometry:   geoJSONGeometry{Type: "Point", Coordinates: coords},
			Properties: f.Attrs,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("write layer %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("write layer %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write layer %s: %w", path, err)
	}
	return nil
}

func (c *FileCodec) ReadTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comment = '#'
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table %s: missing header row", path)
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewMemoryTable(id, records[0], records[1:]), nil
}

func (c *FileCodec) WriteTable(t Table, path, sheet string) error {
	mt, ok := t.(*MemoryTable)
	if !ok {
		return fmt.Errorf("write table %s: %q is not a memory table", path, t.ID())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("write table %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write table %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := mt.Columns()
	if sheet != "" {
		// CSV has no sheets; record the requested name as a comment line
		// so spreadsheet-bound pipelines keep the information.
		if _, err := fmt.Fprintf(f, "# sheet: %s\n", sheet); err != nil {
			return fmt.Errorf("write table %s: %w", path, err)
		}
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write table %s: %w", path, err)
	}
	for i, row := range mt.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write table %s row %d: %w", path, i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write table %s: %w", path, err)
	}
	return f.Sync()
}

// FormatFeatureCount renders a feature count for log messages.
func FormatFeatureCount(n int) string {
	return strconv.Itoa(n) + " feature(s)"
}
