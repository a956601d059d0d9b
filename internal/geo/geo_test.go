package geo

import (
	"os"
	"path/filepath"
	"testing"
)

func pointLayer(id, crs string, pts ...[2]float64) *MemoryLayer {
	features := make([]Feature, 0, len(pts))
	for _, p := range pts {
		features = append(features, Feature{X: p[0], Y: p[1]})
	}
	return NewMemoryLayer(id, crs, GeometryPoint, features)
}

func TestMemoryEngineMerge(t *testing.T) {
	e := NewMemoryEngine()
	out, err := e.RunAlgorithm("merge",
		map[string]string{"output": "merged"},
		map[string]Layer{
			"a": pointLayer("a", "EPSG:4326", [2]float64{1, 1}),
			"b": pointLayer("b", "EPSG:4326", [2]float64{2, 2}, [2]float64{3, 3}),
		})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	merged := out["output"]
	if merged == nil || merged.FeatureCount() != 3 || merged.ID() != "merged" {
		t.Fatalf("merge output: %+v", merged)
	}
}

func TestMemoryEngineClip(t *testing.T) {
	e := NewMemoryEngine()
	out, err := e.RunAlgorithm("clip",
		map[string]string{"output": "clipped"},
		map[string]Layer{
			"input": pointLayer("in", "EPSG:4326", [2]float64{0, 0}, [2]float64{5, 5}, [2]float64{20, 20}),
			"mask":  pointLayer("mask", "EPSG:4326", [2]float64{-1, -1}, [2]float64{10, 10}),
		})
	if err != nil {
		t.Fatalf("clip: %v", err)
	}
	if got := out["output"].FeatureCount(); got != 2 {
		t.Fatalf("clip kept %d features, want 2", got)
	}
}

func TestMemoryEngineReproject(t *testing.T) {
	e := NewMemoryEngine()
	out, err := e.RunAlgorithm("reproject",
		map[string]string{"output": "re", "crs": "EPSG:3857"},
		map[string]Layer{"input": pointLayer("in", "EPSG:4326", [2]float64{1, 2})})
	if err != nil {
		t.Fatalf("reproject: %v", err)
	}
	if got := out["output"].CRS(); got != "EPSG:3857" {
		t.Fatalf("reprojected CRS = %q", got)
	}
}

func TestMemoryEngineUnknownAlgorithm(t *testing.T) {
	e := NewMemoryEngine()
	if _, err := e.RunAlgorithm("dissolve", nil, nil); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}

func TestValidCRSRef(t *testing.T) {
	valid := []string{"EPSG:4326", "epsg:3857", "ESRI:102100"}
	invalid := []string{"", "4326", "EPSG:", ":4326", "EPSG:abc", "EP SG:4326"}
	for _, s := range valid {
		if !ValidCRSRef(s) {
			t.Errorf("ValidCRSRef(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if ValidCRSRef(s) {
			t.Errorf("ValidCRSRef(%q) = true, want false", s)
		}
	}
}

func TestFileCodecLayerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pts.geojson")
	c := NewFileCodec()

	in := NewMemoryLayer("pts", "EPSG:4326", GeometryPoint, []Feature{
		{X: 139.69, Y: 35.68, Attrs: map[string]string{"name": "tokyo"}},
		{X: 135.50, Y: 34.69, Attrs: map[string]string{"name": "osaka"}},
	})
	if err := c.WriteLayer(in, path, "geojson"); err != nil {
		t.Fatalf("WriteLayer: %v", err)
	}

	out, err := c.ReadLayer(path)
	if err != nil {
		t.Fatalf("ReadLayer: %v", err)
	}
	if out.ID() != "pts" || out.CRS() != "EPSG:4326" || out.GeometryKind() != GeometryPoint {
		t.Fatalf("handle metadata: id=%q crs=%q kind=%q", out.ID(), out.CRS(), out.GeometryKind())
	}
	if out.FeatureCount() != 2 {
		t.Fatalf("feature count = %d", out.FeatureCount())
	}
	ml := out.(*MemoryLayer)
	if ml.Features[0].Attrs["name"] != "tokyo" {
		t.Fatalf("attributes lost: %+v", ml.Features[0])
	}
}

func TestFileCodecWriteLayerUnsupportedFormat(t *testing.T) {
	c := NewFileCodec()
	err := c.WriteLayer(pointLayer("x", "EPSG:4326"), filepath.Join(t.TempDir(), "x.shp"), "shapefile")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFileCodecReadLayerPolygonRepresentativePoint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poly.geojson")
	doc := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[1,2],[3,4],[5,6],[1,2]]]},"properties":{}}]}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	l, err := NewFileCodec().ReadLayer(path)
	if err != nil {
		t.Fatalf("ReadLayer: %v", err)
	}
	if l.GeometryKind() != GeometryPolygon {
		t.Fatalf("kind = %q", l.GeometryKind())
	}
	ml := l.(*MemoryLayer)
	if ml.Features[0].X != 1 || ml.Features[0].Y != 2 {
		t.Fatalf("representative point = (%v, %v)", ml.Features[0].X, ml.Features[0].Y)
	}
}

func TestFileCodecTableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "attrs.csv")
	c := NewFileCodec()

	in := NewMemoryTable("attrs", []string{"id", "name"}, [][]string{{"1", "tokyo"}, {"2", "osaka"}})
	if err := c.WriteTable(in, path, ""); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out, err := c.ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if out.RowCount() != 2 || len(out.Columns()) != 2 || out.Columns()[1] != "name" {
		t.Fatalf("table round trip: cols=%v rows=%d", out.Columns(), out.RowCount())
	}
}
