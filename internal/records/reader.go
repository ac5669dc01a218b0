package records

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// Format identifies a record file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Record is a single loosely typed record. A nil Record is a null entry.
type Record = map[string]any

// ReadFile reads all records from path.
func ReadFile(path string) ([]Record, error) {
	format, compression, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer f.Close()

	r, closeFn, err := decompress(f, compression)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer closeFn()

	recs, err := Read(r, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Read decodes all records of the given format from r.
func Read(r io.Reader, format Format) ([]Record, error) {
	switch format {
	case FormatJSON, FormatYAML:
		return readYAML(r)
	case FormatCSV:
		return readCSV(r)
	case FormatXLSX:
		return readXLSX(r)
	}
	return nil, fmt.Errorf("format %q: %w", format, pgbulk.ErrUnsupportedFormat)
}

// DetectFormat returns the record format and compression suffix ("", ".gz" or
// ".zst") for a file name.
func DetectFormat(path string) (Format, string, error) {
	name := strings.ToLower(filepath.Base(path))

	var compression string
	for _, suffix := range []string{".gz", ".zst"} {
		if strings.HasSuffix(name, suffix) {
			compression = suffix
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}

	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON, compression, nil
	case ".yaml", ".yml":
		return FormatYAML, compression, nil
	case ".csv":
		return FormatCSV, compression, nil
	case ".xlsx":
		return FormatXLSX, compression, nil
	}
	return "", "", fmt.Errorf("cannot infer record format from %q (want .json, .yaml, .yml, .csv or .xlsx): %w",
		filepath.Base(path), pgbulk.ErrUnsupportedFormat)
}

func decompress(r io.Reader, compression string) (io.Reader, func(), error) {
	switch compression {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return zr, func() { zr.Close() }, nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return zr, zr.Close, nil
	}
	return r, func() {}, nil
}
