package research

import (
	"testing"

	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *Session {
	req := schemas.ResearchRequest{Query: "topic"}
	req.Normalize()
	return newSession(req, nil)
}

func TestSessionStatusIsAssignedOnce(t *testing.T) {
	s := testSession()
	assert.Equal(t, schemas.StatusRunning, s.status)

	s.setStatus(schemas.StatusCompleted)
	s.setStatus(schemas.StatusFailed)

	assert.Equal(t, schemas.StatusCompleted, s.status)
}

func TestSessionStepLifecycle(t *testing.T) {
	s := testSession()

	step := s.beginStep("init", schemas.StepTypeStrategy, "Init", "", nil)
	assert.Equal(t, schemas.StepInProgress, step.Status)

	s.completeStep(step)
	assert.Equal(t, schemas.StepCompleted, step.Status)
	assert.Equal(t, 100, step.Progress)

	// Terminal steps never regress.
	s.failStep(step)
	assert.Equal(t, schemas.StepCompleted, step.Status)
}

func TestSessionStepTimestampsStrictlyIncrease(t *testing.T) {
	s := testSession()

	var last *schemas.ResearchStep
	for i := 0; i < 50; i++ {
		step := s.beginStep("s", schemas.StepTypeSearch, "Search", "", nil)
		if last != nil {
			assert.True(t, last.Timestamp.Before(step.Timestamp))
		}
		prev := step.Timestamp
		s.completeStep(step)
		assert.True(t, prev.Before(step.Timestamp))
		last = step
	}
}

func TestSessionAccumulatorsNeverShrink(t *testing.T) {
	s := testSession()

	s.addLearnings([]string{"a", "b"})
	s.addLearnings(nil)
	s.addLearnings([]string{"c"})
	assert.Equal(t, []string{"a", "b", "c"}, s.learnings)

	s.addCitations([]schemas.Citation{{URL: "https://x", Relevance: 5}})
	s.addCitations([]schemas.Citation{{URL: "https://x", Relevance: 5}})
	assert.Len(t, s.citations, 2, "citations are not deduplicated")
}

func TestSessionVisitedDeduplicates(t *testing.T) {
	s := testSession()

	s.addVisited([]string{"https://a", "https://b", "https://a", ""})
	assert.Equal(t, 2, s.uniqueSources())
}

func TestSessionLearningWindows(t *testing.T) {
	s := testSession()
	s.addLearnings([]string{"1", "2", "3", "4", "5", "6", "7"})

	assert.Equal(t, []string{"5", "6", "7"}, s.recentLearnings(3))
	assert.Equal(t, []string{"1", "2", "3"}, s.firstLearnings(3))
	assert.Len(t, s.recentLearnings(10), 7)
	assert.Len(t, s.firstLearnings(10), 7)
}

func TestSessionSnapshotIsACopy(t *testing.T) {
	s := testSession()
	step := s.beginStep("init", schemas.StepTypeStrategy, "Init", "", nil)

	snap := s.snapshotSteps()
	require.Len(t, snap, 1)

	s.completeStep(step)
	assert.Equal(t, schemas.StepInProgress, snap[0].Status)
}
