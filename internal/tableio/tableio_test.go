package tableio

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/qrsheet/pkg/core"
)

func sampleTable() core.Table {
	return core.Table{
		Columns: []string{"Name", "Qty"},
		Rows:    [][]string{{"apple", "3"}, {"pear"}},
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"t.csv", FormatCSV, false},
		{"dir/T.YAML", FormatYAML, false},
		{"t.yml", FormatYAML, false},
		{"t.xlsx", FormatXLSX, false},
		{"t.json", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadCSV(t *testing.T) {
	got, err := ReadCSV([]byte("Name,Qty\napple,3\npear,5\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Qty"}, got.Columns)
	assert.Equal(t, [][]string{{"apple", "3"}, {"pear", "5"}}, got.Rows)
}

func TestFromRows_TrailingBlankLines(t *testing.T) {
	got := fromRows([][]string{{"A", "B"}, {"1", "2"}, nil, {""}})

	assert.Equal(t, []string{"A", "B"}, got.Columns)
	assert.Equal(t, [][]string{{"1", "2"}}, got.Rows)
}

func TestFromRows_Empty(t *testing.T) {
	got := fromRows(nil)
	assert.Empty(t, got.Columns)
	assert.NotNil(t, got.Rows)
}

func TestReadYAML(t *testing.T) {
	doc := `
columns: [Name, Qty]
rows:
  - [apple, "3"]
  - [pear]
`
	got, err := ReadYAML([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), got)
}

func TestReadYAML_MissingRows(t *testing.T) {
	got, err := ReadYAML([]byte("columns: [A]\n"))
	require.NoError(t, err)
	assert.NotNil(t, got.Rows)
	assert.Empty(t, got.Rows)
}

func TestReadYAML_MissingColumns(t *testing.T) {
	got, err := ReadYAML([]byte("rows: [[a]]\n"))
	require.NoError(t, err)
	assert.NotNil(t, got.Columns)
	assert.Empty(t, got.Columns)
}

func TestReadYAML_Invalid(t *testing.T) {
	_, err := ReadYAML([]byte("columns: {a: b}"))
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(context.Background(), &buf, sampleTable()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Qty", lines[0])
	assert.Equal(t, "apple,3", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "pear"))
}

func TestCSVRoundTrip(t *testing.T) {
	in := core.Table{Columns: []string{"A", "B"}, Rows: [][]string{{"1", "2"}, {"3", "4"}}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(context.Background(), &buf, in))
	out, err := ReadCSV(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, in, out)
}

func TestWriteHTML_EscapesCells(t *testing.T) {
	tbl := core.Table{
		Columns: []string{"<b>col</b>"},
		Rows:    [][]string{{"<script>alert(1)</script>"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(context.Background(), &buf, tbl))
	html := buf.String()

	assert.Contains(t, html, "class='scan-table'")
	assert.Contains(t, html, "<th>&lt;b&gt;col&lt;/b&gt;</th>")
	assert.NotContains(t, html, "<script>")
}

func TestWriteHTML_SparseRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(context.Background(), &buf, sampleTable()))

	assert.Equal(t, 3, strings.Count(buf.String(), "<tr>"))
	assert.Contains(t, buf.String(), "<td>pear</td>")
}

func TestWriteHTML_RowsWiderThanHeader(t *testing.T) {
	tests := []struct {
		name string
		tbl  core.Table
	}{
		{"short header", core.Table{Columns: []string{"A"}, Rows: [][]string{{"1", "2", "3"}}}},
		{"no header", core.Table{Columns: []string{}, Rows: [][]string{{"1", "2", "3"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteHTML(context.Background(), &buf, tt.tbl))

			html := buf.String()
			for _, cell := range []string{"<td>1</td>", "<td>2</td>", "<td>3</td>"} {
				assert.Contains(t, html, cell)
			}
		})
	}
}

func TestView_WidensHeader(t *testing.T) {
	v := View(core.Table{Columns: []string{"A"}, Rows: [][]string{{"1", "2"}, {"3"}}})

	assert.Equal(t, []string{"A", ""}, v.Columns())
	assert.Equal(t, 2, v.NumRows())
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	WriteText(&buf, sampleTable())

	out := buf.String()
	// go-pretty upper-cases headers by default
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "apple")
	assert.Contains(t, out, "pear")
	assert.Contains(t, out, "┌")
}

func TestXLSXRoundTrip(t *testing.T) {
	in := core.Table{Columns: []string{"A", "B"}, Rows: [][]string{{"1", "2"}, {"x", "y"}}}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, in))
	out, err := ReadXLSX(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, in, out)
}

func TestRead_Dispatch(t *testing.T) {
	got, err := Read(FormatYAML, []byte("columns: [A]\nrows: [[b]]\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"b"}}, got.Rows)

	_, err = Read(Format("json"), nil)
	assert.Error(t, err)
}
