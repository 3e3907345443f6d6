package onepager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "onepager/internal/domain/models/onepager"
)

func testBlocks(ids ...string) []models.Block {
	blocks := []models.Block{{ID: models.TitleBlockID, Title: "Doc"}}
	for _, id := range ids {
		blocks = append(blocks, models.Block{ID: id, Title: id})
	}
	return blocks
}

func ids(blocks []models.Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.ID
	}
	return out
}

func TestInsertAfter(t *testing.T) {
	blocks := testBlocks("a", "b")

	t.Run("inserts immediately after anchor", func(t *testing.T) {
		got, ok := insertAfter(blocks, "a", models.Block{ID: "n"})
		require.True(t, ok)
		assert.Equal(t, []string{"title", "a", "n", "b"}, ids(got))
		assert.Equal(t, []string{"title", "a", "b"}, ids(blocks))
	})

	t.Run("after title", func(t *testing.T) {
		got, ok := insertAfter(blocks, models.TitleBlockID, models.Block{ID: "n"})
		require.True(t, ok)
		assert.Equal(t, []string{"title", "n", "a", "b"}, ids(got))
	})

	t.Run("after last", func(t *testing.T) {
		got, ok := insertAfter(blocks, "b", models.Block{ID: "n"})
		require.True(t, ok)
		assert.Equal(t, []string{"title", "a", "b", "n"}, ids(got))
	})

	t.Run("unknown anchor is a no-op", func(t *testing.T) {
		got, ok := insertAfter(blocks, "missing", models.Block{ID: "n"})
		assert.False(t, ok)
		assert.Equal(t, ids(blocks), ids(got))
	})
}

func TestDeleteBlock(t *testing.T) {
	tests := []struct {
		name   string
		blocks []models.Block
		id     string
		want   []string
		wantOK bool
	}{
		{name: "removes section", blocks: testBlocks("a", "b", "c"), id: "b", want: []string{"title", "a", "c"}, wantOK: true},
		{name: "title is never deleted", blocks: testBlocks("a", "b"), id: models.TitleBlockID, want: []string{"title", "a", "b"}},
		{name: "last section is kept", blocks: testBlocks("a"), id: "a", want: []string{"title", "a"}},
		{name: "unknown id", blocks: testBlocks("a", "b"), id: "zzz", want: []string{"title", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := deleteBlock(tt.blocks, tt.id)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name     string
		activeID string
		overID   string
		want     []string
		wantOK   bool
	}{
		{name: "move down", activeID: "a", overID: "c", want: []string{"title", "b", "c", "a", "d"}, wantOK: true},
		{name: "move up", activeID: "d", overID: "b", want: []string{"title", "a", "d", "b", "c"}, wantOK: true},
		{name: "adjacent swap", activeID: "b", overID: "c", want: []string{"title", "a", "c", "b", "d"}, wantOK: true},
		{name: "same position", activeID: "b", overID: "b", want: []string{"title", "a", "b", "c", "d"}},
		{name: "over title", activeID: "c", overID: models.TitleBlockID, want: []string{"title", "a", "b", "c", "d"}},
		{name: "active title", activeID: models.TitleBlockID, overID: "c", want: []string{"title", "a", "b", "c", "d"}},
		{name: "unknown id", activeID: "x", overID: "c", want: []string{"title", "a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := testBlocks("a", "b", "c", "d")
			got, ok := reorder(blocks, tt.activeID, tt.overID)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, []string{"title", "a", "b", "c", "d"}, ids(blocks), "input must not be mutated")
		})
	}
}

func TestReorderOverTitleReturnsOriginalSlice(t *testing.T) {
	blocks := testBlocks("a", "b")

	got, ok := reorder(blocks, "b", models.TitleBlockID)

	require.False(t, ok)
	require.Len(t, got, len(blocks))
	assert.Same(t, &blocks[0], &got[0])
}

func TestReplaceBlock(t *testing.T) {
	blocks := testBlocks("a", "b")

	got, ok := replaceBlock(blocks, models.Block{ID: "b", Title: "renamed"})
	require.True(t, ok)
	assert.Equal(t, "renamed", got[2].Title)
	assert.Equal(t, "b", blocks[2].Title)

	_, ok = replaceBlock(blocks, models.Block{ID: "missing"})
	assert.False(t, ok)
}
