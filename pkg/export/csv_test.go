package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTable struct {
	header []string
	rows   [][]string
}

func (s stubTable) Header() []string { return s.header }
func (s stubTable) Rows() [][]string { return s.rows }

func TestWriteCSV(t *testing.T) {
	table := stubTable{
		header: []string{"Image", "Sender", "Amount"},
		rows: [][]string{
			{"1.jpg", "Alice Khan", "1,250.00"},
			{"2.jpg", "", ""},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	got, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, table.header, got[0])
	assert.Equal(t, table.rows[0], got[1])
	assert.Equal(t, table.rows[1], got[2])
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	table := stubTable{header: []string{"Image"}, rows: [][]string{{"1.jpg"}}}
	require.NoError(t, WriteCSVFile(path, table))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Image\n1.jpg\n", string(data))
}

func TestWriteCSVFileBadPath(t *testing.T) {
	err := WriteCSVFile(filepath.Join(t.TempDir(), "no", "such", "dir.csv"), stubTable{header: []string{"Image"}})
	require.Error(t, err)
}
