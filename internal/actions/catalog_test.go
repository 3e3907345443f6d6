package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onepager/internal/domain/models/onepager"
)

func TestActionsFor(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	tests := []struct {
		label string
		want  []string
	}{
		{
			label: "Problem Statement",
			want:  []string{"Clarify Problem", "Expand on Impact", "Suggest Metrics", "Improve Writing", "Make More Concise"},
		},
		{
			label: "Proposed SOLUTION",
			want:  []string{"Strengthen Solution", "Outline Implementation Steps", "Estimate Effort", "Improve Writing", "Make More Concise"},
		},
		{
			label: "Problem and solution",
			want:  []string{"Clarify Problem", "Expand on Impact", "Suggest Metrics", "Improve Writing", "Make More Concise"},
		},
		{
			label: "Timeline",
			want:  []string{"Improve Writing", "Make More Concise"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.ActionsFor(tt.label))
		})
	}
}

func TestActionsForTitleBlock(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	got := catalog.ActionsForBlock(onepager.Block{ID: onepager.TitleBlockID, Title: "Problem solver app"})
	assert.Equal(t, []string{"Improve Writing", "Make More Concise"}, got)
}

func TestActionsForDoesNotAliasDefaults(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	first := catalog.ActionsFor("Timeline")
	first[0] = "mutated"
	assert.Equal(t, "Improve Writing", catalog.ActionsFor("Timeline")[0])
}

func TestFollowUpAndSamples(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Summarize into Key Points", catalog.FollowUpAction())
	assert.True(t, IsSummarize(catalog.FollowUpAction()))

	sample, ok := catalog.Sample("Make More Concise")
	require.True(t, ok)
	assert.Equal(t, "A cluttered mobile UI has led to a 20% drop in user engagement.", sample)

	_, ok = catalog.Sample("Translate to French")
	assert.False(t, ok)
}

func TestIsSummarize(t *testing.T) {
	assert.True(t, IsSummarize("SUMMARIZE this"))
	assert.True(t, IsSummarize("Summarize into Key Points"))
	assert.False(t, IsSummarize("Improve Writing"))
}

func TestParseRequiresFollowUp(t *testing.T) {
	_, err := Parse([]byte("defaults: [Improve Writing]\n"))
	assert.Error(t, err)
}

func TestParseKeepsSectionOrder(t *testing.T) {
	data := []byte(`
follow_up: Summarize
sections:
  zeta: [Z]
  alpha: [A]
`)
	catalog, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Z"}, catalog.ActionsFor("alpha zeta"))
}
