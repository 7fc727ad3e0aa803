package table

import (
	"testing"

	"github.com/leg100/rtable/internal/dom"
	"github.com/leg100/rtable/internal/resizable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, header []*dom.Cell, body [][]string, opts ...func(*resizable.Config)) *resizable.Table {
	t.Helper()

	doc := &dom.Table{ID: "test", Head: []*dom.Row{{Cells: header}}}
	for _, texts := range body {
		doc.Body = append(doc.Body, dom.NewRow(texts...))
	}
	cfg := resizable.DefaultConfig()
	cfg.MinColumnWidth = 1
	for _, fn := range opts {
		fn(&cfg)
	}
	tbl, err := resizable.New(doc, cfg)
	require.NoError(t, err)
	return tbl
}

func twoColumns(t *testing.T, opts ...func(*resizable.Config)) *resizable.Table {
	return setup(t,
		[]*dom.Cell{
			{Text: "A", Style: dom.Style{Width: 10}},
			{Text: "B", Style: dom.Style{Width: 10}},
		},
		[][]string{{"a", "b"}},
		opts...,
	)
}

func TestRender(t *testing.T) {
	tbl := twoColumns(t)

	got := Render(tbl, Options{Selected: -1, HandleWidth: 1})

	assert.Equal(t, "- A      │- B      │", got.Header)
	assert.Equal(t, []string{"a         b         "}, got.Rows)
	assert.Equal(t, 20, got.Width)
}

func TestRender_HitTest(t *testing.T) {
	tbl := twoColumns(t)
	view := Render(tbl, Options{Selected: -1, HandleWidth: 1})

	tests := []struct {
		name   string
		x      int
		kind   dom.ElementKind
		column int
		miss   bool
	}{
		{name: "first toggle", x: 0, kind: dom.ToggleElement, column: 0},
		{name: "first handle", x: 9, kind: dom.HandleElement, column: 0},
		{name: "second toggle", x: 10, kind: dom.ToggleElement, column: 1},
		{name: "second handle", x: 19, kind: dom.HandleElement, column: 1},
		{name: "title", x: 5, miss: true},
		{name: "beyond table", x: 30, miss: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := view.HitTest(tt.x)
			if tt.miss {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.column, got.Column)
		})
	}
}

func TestRender_WideHandle(t *testing.T) {
	tbl := twoColumns(t)

	got := Render(tbl, Options{Selected: -1, HandleWidth: 3})

	assert.Equal(t, "- A      │- B      │", got.Header)
	element, ok := got.HitTest(7)
	require.True(t, ok)
	assert.Equal(t, dom.HandleElement, element.Kind)
	_, ok = got.HitTest(6)
	assert.False(t, ok)
}

func TestRender_CollapsedWithPlaceholder(t *testing.T) {
	tbl := twoColumns(t, func(cfg *resizable.Config) {
		cfg.UsePlaceholdersForCollapse = true
	})
	require.NoError(t, tbl.ToggleColumn(0))

	got := Render(tbl, Options{Selected: -1, HandleWidth: 1})

	assert.Equal(t, "+  - B      │", got.Header)
	assert.Equal(t, []string{"┆  b         "}, got.Rows)

	element, ok := got.HitTest(0)
	require.True(t, ok)
	assert.Equal(t, dom.ToggleElement, element.Kind)
	assert.Equal(t, 0, element.Column)
}

func TestRender_CollapsedWithoutPlaceholder(t *testing.T) {
	tbl := twoColumns(t)
	require.NoError(t, tbl.ToggleColumn(0))

	got := Render(tbl, Options{Selected: -1, HandleWidth: 1})

	assert.Equal(t, "- B      │", got.Header)
	assert.Equal(t, []string{"b         "}, got.Rows)
	assert.Equal(t, 10, got.Width)
}

func TestRender_Span(t *testing.T) {
	tbl := setup(t,
		[]*dom.Cell{{Text: "AB", ColSpan: 2, Style: dom.Style{Width: 20}}},
		[][]string{{"x", "y"}},
	)

	got := Render(tbl, Options{Selected: -1, HandleWidth: 1})

	assert.Equal(t, "- AB               │", got.Header)
	assert.Equal(t, []string{"x         y         "}, got.Rows)
}

func TestRender_Truncates(t *testing.T) {
	tbl := setup(t,
		[]*dom.Cell{{Text: "Email address", Style: dom.Style{Width: 8}}},
		[][]string{{"alice@example.com"}},
	)

	got := Render(tbl, Options{Selected: -1, HandleWidth: 1})

	assert.Equal(t, "- Emai…│", got.Header)
	assert.Equal(t, []string{"alice@… "}, got.Rows)
}

func TestRender_Destroyed(t *testing.T) {
	tbl := twoColumns(t)
	require.NoError(t, tbl.Destroy())

	got := Render(tbl, Options{Selected: -1, HandleWidth: 1})

	assert.Empty(t, got.Header)
	assert.Empty(t, got.Rows)
}
