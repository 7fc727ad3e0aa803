package tabledef

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    Definition
		wantErr string
	}{
		{
			name: "valid",
			yaml: `
id: people
header:
  - title: Name
    width: 20
  - title: Contact
    span: 2
rows:
  - [alice, alice@example.com, "555"]
  - [bob]
`,
			want: Definition{
				ID: "people",
				Header: []Column{
					{Title: "Name", Width: 20},
					{Title: "Contact", Span: 2},
				},
				Rows: [][]string{
					{"alice", "alice@example.com", "555"},
					{"bob"},
				},
			},
		},
		{
			name:    "empty",
			yaml:    "",
			wantErr: "empty table definition",
		},
		{
			name:    "no header",
			yaml:    "id: people\n",
			wantErr: "header must have at least one column",
		},
		{
			name:    "unknown field",
			yaml:    "id: people\ncolour: red\n",
			wantErr: "field colour not found",
		},
		{
			name: "row too long",
			yaml: `
header:
  - title: Name
rows:
  - [alice, bob]
`,
			wantErr: "row 0: has 2 cells but table has 1 columns",
		},
		{
			name: "negative span",
			yaml: `
header:
  - title: Name
    span: -1
`,
			wantErr: "span must not be negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocument(t *testing.T) {
	d := Definition{
		ID: "people",
		Header: []Column{
			{Title: "Name", Width: 20},
			{Title: "Contact", Span: 2},
		},
		Rows: [][]string{{"bob"}},
	}

	doc := d.Document()

	assert.Equal(t, "people", doc.ID)
	require.Len(t, doc.Head, 1)
	require.Len(t, doc.Head[0].Cells, 2)
	assert.Equal(t, 20.0, doc.Head[0].Cells[0].Style.Width)
	assert.Equal(t, 2, doc.Head[0].Cells[1].Span())
	require.Len(t, doc.Body, 1)
	require.Len(t, doc.Body[0].Cells, 3)
	assert.Equal(t, "bob", doc.Body[0].Cells[0].Text)
	assert.Equal(t, "", doc.Body[0].Cells[2].Text)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte("header:\n  - title: Name\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ColumnCount())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDemo(t *testing.T) {
	d := Demo()

	require.NoError(t, d.Validate())
	assert.Equal(t, 5, d.ColumnCount())
}
