package research

import (
	"fmt"
	"testing"

	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedCitationsOrdersByRelevanceDescending(t *testing.T) {
	in := []schemas.Citation{
		{URL: "https://low", Relevance: 2},
		{URL: "https://high", Relevance: 9},
		{URL: "https://mid", Relevance: 5},
	}

	got := sortedCitations(in, 20)

	require.Len(t, got, 3)
	assert.Equal(t, "https://high", got[0].URL)
	assert.Equal(t, "https://mid", got[1].URL)
	assert.Equal(t, "https://low", got[2].URL)

	// Input order is preserved.
	assert.Equal(t, "https://low", in[0].URL)
}

func TestSortedCitationsIsStableForTies(t *testing.T) {
	in := []schemas.Citation{
		{URL: "https://first", Relevance: 5},
		{URL: "https://second", Relevance: 5},
		{URL: "https://third", Relevance: 5},
	}

	got := sortedCitations(in, 20)

	assert.Equal(t, "https://first", got[0].URL)
	assert.Equal(t, "https://second", got[1].URL)
	assert.Equal(t, "https://third", got[2].URL)
}

func TestSortedCitationsTruncates(t *testing.T) {
	in := make([]schemas.Citation, 30)
	for i := range in {
		in[i] = schemas.Citation{URL: fmt.Sprintf("https://example.com/%d", i), Relevance: i % 10}
	}

	got := sortedCitations(in, citationsLimit)

	assert.Len(t, got, citationsLimit)
	assert.Equal(t, 9, got[0].Relevance)
}

func TestBuildFailureCarriesPartialState(t *testing.T) {
	s := testSession()
	s.addLearnings([]string{"a"})
	s.addCitations([]schemas.Citation{{URL: "https://x", Relevance: 3}})
	s.setStatus(schemas.StatusFailed)

	resp := buildFailure(s, assert.AnError)

	assert.Equal(t, schemas.StatusFailed, resp.Status)
	assert.Equal(t, assert.AnError.Error(), resp.Error)
	require.NotNil(t, resp.PartialResults)
	assert.Equal(t, []string{"a"}, resp.PartialResults.Learnings)
	assert.Len(t, resp.PartialResults.Citations, 1)
	assert.Nil(t, resp.Report)
	assert.Empty(t, resp.KeyLearnings)
	assert.Nil(t, resp.Metadata)
}

func TestBreadthForLevel(t *testing.T) {
	assert.Equal(t, 3, breadthForLevel(6, 2))
	assert.Equal(t, 2, breadthForLevel(6, 3))
	assert.Equal(t, 2, breadthForLevel(3, 2))
	assert.Equal(t, 2, breadthForLevel(2, 4))
}
