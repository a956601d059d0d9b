// Package geo declares the narrow interfaces the workflow core uses to talk
// to geometry engines, format codecs, and transfer layers, plus the built-in
// implementations the default binary wires in. The core treats layers,
// tables, and datastores as opaque handles; it never inspects geometry.
package geo

import "context"

// GeometryKind classifies a layer's features.
type GeometryKind string

const (
	GeometryPoint   GeometryKind = "Point"
	GeometryLine    GeometryKind = "LineString"
	GeometryPolygon GeometryKind = "Polygon"
	GeometryUnknown GeometryKind = "Unknown"
)

// Layer is an opaque handle to a registered vector layer.
type Layer interface {
	ID() string
	CRS() string
	GeometryKind() GeometryKind
	FeatureCount() int
}

// Table is an opaque handle to a registered attribute table.
type Table interface {
	ID() string
	Columns() []string
	RowCount() int
}

// DataStore is an opaque handle to a registered container of datasets,
// typically a directory produced by an archive extraction.
type DataStore interface {
	ID() string
	Path() string
}

// Engine runs named geometry algorithms. The core only knows that a call
// yields named output layers or an error.
type Engine interface {
	RunAlgorithm(name string, params map[string]string, inputs map[string]Layer) (map[string]Layer, error)
}

// Codec reads and writes layers and tables in concrete file formats.
type Codec interface {
	ReadLayer(path string) (Layer, error)
	WriteLayer(l Layer, path, format string) error
	ReadTable(path string) (Table, error)
	WriteTable(t Table, path, sheet string) error
}

// Archiver extracts archives into a destination directory.
type Archiver interface {
	Unzip(src, destDir string) error
}

// Fetcher retrieves remote resources to local paths.
type Fetcher interface {
	Download(ctx context.Context, url, destPath string) error
}

// FolderStore is the DataStore handle for an on-disk directory.
type FolderStore struct {
	id   string
	path string
}

func NewFolderStore(id, path string) *FolderStore {
	return &FolderStore{id: id, path: path}
}

func (f *FolderStore) ID() string   { return f.id }
func (f *FolderStore) Path() string { return f.path }
