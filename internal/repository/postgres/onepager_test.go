package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onepager/internal/domain/models/onepager"
	"onepager/internal/richtext"
)

func TestNewTableNames(t *testing.T) {
	assert.Equal(t, "dev_one_pagers", NewTableNames("dev_").OnePagers)
	assert.Equal(t, "one_pagers", NewTableNames("").OnePagers)
}

func TestEncodeFieldsNilIsEmptyArray(t *testing.T) {
	data, err := encodeFields(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestDecodeFields(t *testing.T) {
	t.Run("tree content", func(t *testing.T) {
		fields := []onepager.FieldRecord{
			{ID: "a", Title: "Problem Statement", Content: richtext.FromPlainText("Churn is up.")},
			{ID: "b", Title: "Risks", Content: richtext.BulletList([]string{"Budget", "Timeline"})},
		}
		data, err := encodeFields(fields)
		require.NoError(t, err)

		got, err := decodeFields(data)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Churn is up.", richtext.Flatten(got[0].Content))
		assert.True(t, richtext.Equal(fields[1].Content, got[1].Content))
	})

	t.Run("legacy string content", func(t *testing.T) {
		got, err := decodeFields([]byte(`[{"id":"a","title":"Problem Statement","content":"Plain old text"}]`))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, richtext.Equal(richtext.FromPlainText("Plain old text"), got[0].Content))
	})

	t.Run("empty column", func(t *testing.T) {
		got, err := decodeFields(nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := decodeFields([]byte(`{"id":`))
		assert.Error(t, err)
	})
}
