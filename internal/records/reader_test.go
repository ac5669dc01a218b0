package records

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path        string
		format      Format
		compression string
	}{
		{"customers.json", FormatJSON, ""},
		{"customers.YAML", FormatYAML, ""},
		{"dir/customers.yml", FormatYAML, ""},
		{"customers.csv", FormatCSV, ""},
		{"customers.xlsx", FormatXLSX, ""},
		{"customers.csv.gz", FormatCSV, ".gz"},
		{"customers.json.zst", FormatJSON, ".zst"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, compression, err := DetectFormat(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.compression, compression)
		})
	}

	_, _, err := DetectFormat("customers.parquet")
	assert.ErrorIs(t, err, pgbulk.ErrUnsupportedFormat)
}

func TestRead_YAMLSequence(t *testing.T) {
	doc := `
- name: Ada
  score: 3
- null
- name: Grace
  email: null
`
	recs, err := Read(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "Ada", recs[0]["name"])
	assert.Equal(t, 3, recs[0]["score"])
	assert.Nil(t, recs[1])
	assert.Contains(t, recs[2], "email")
	assert.Nil(t, recs[2]["email"])
}

func TestRead_YAMLRecordsKey(t *testing.T) {
	doc := "table: customers\nrecords:\n  - name: Ada\n  - name: Grace\n"
	recs, err := Read(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Grace", recs[1]["name"])
}

func TestRead_JSON(t *testing.T) {
	doc := `[{"name": "Ada", "active": true, "balance": 10.5}, null]`
	recs, err := Read(strings.NewReader(doc), FormatJSON)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, true, recs[0]["active"])
	assert.Equal(t, 10.5, recs[0]["balance"])
	assert.Nil(t, recs[1])
}

func TestRead_YAMLErrors(t *testing.T) {
	tests := map[string]string{
		"scalar root":        "hello",
		"mapping no records": "name: Ada",
		"non-mapping entry":  "- 1\n- 2",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(doc), FormatYAML)
			assert.ErrorIs(t, err, pgbulk.ErrUnsupportedFormat)
		})
	}
}

func TestRead_EmptyDocument(t *testing.T) {
	recs, err := Read(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRead_CSV(t *testing.T) {
	doc := "name,email,score\nAda,,3\n,,\nGrace,grace@example.com\n"
	recs, err := Read(strings.NewReader(doc), FormatCSV)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, Record{"name": "Ada", "email": nil, "score": "3"}, recs[0])
	assert.Equal(t, Record{"name": "Grace", "email": "grace@example.com", "score": nil}, recs[1])
}

func TestRead_UnknownFormat(t *testing.T) {
	_, err := Read(strings.NewReader(""), Format("parquet"))
	assert.ErrorIs(t, err, pgbulk.ErrUnsupportedFormat)
}

func TestReadFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"name", "score"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Ada", 3}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Grace"}))

	path := filepath.Join(t.TempDir(), "customers.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	recs, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, Record{"name": "Ada", "score": "3"}, recs[0])
	assert.Equal(t, Record{"name": "Grace", "score": nil}, recs[1])
}

func TestReadFile_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("name\nAda\nGrace\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	recs, err := ReadFile(writeFile(t, "customers.csv.gz", buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Grace", recs[1]["name"])
}

func TestReadFile_Zstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	data := enc.EncodeAll([]byte(`[{"name": "Ada"}]`), nil)
	require.NoError(t, enc.Close())

	recs, err := ReadFile(writeFile(t, "customers.json.zst", data))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Ada", recs[0]["name"])
}

func TestReadFile_Errors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = ReadFile(writeFile(t, "broken.csv.gz", []byte("not gzip")))
	assert.Error(t, err)

	_, err = ReadFile(writeFile(t, "notes.txt", []byte("x")))
	assert.ErrorIs(t, err, pgbulk.ErrUnsupportedFormat)
}
