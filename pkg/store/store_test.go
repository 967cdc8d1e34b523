package store

import (
	"context"
	"testing"

	"github.com/spawn-mcp/deep-research/pkg/errors"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	resp := &schemas.ResearchResponse{
		ResearchID: "r-1",
		Status:     schemas.StatusCompleted,
	}

	require.NoError(t, s.Save(context.Background(), resp))

	got, err := s.Get(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, resp, got)
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, errors.ErrReportNotFound, errors.CodeOf(err))
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &schemas.ResearchResponse{ResearchID: "r-1", Status: schemas.StatusFailed}))
	require.NoError(t, s.Save(ctx, &schemas.ResearchResponse{ResearchID: "r-1", Status: schemas.StatusCompleted}))

	got, err := s.Get(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, schemas.StatusCompleted, got.Status)
}
