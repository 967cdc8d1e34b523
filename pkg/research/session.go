// Package research implements the deep research orchestration pipeline:
// a multi-depth, multi-breadth iteration that generates search queries,
// fans them out against a web search provider under a bounded
// concurrency gate, extracts learnings and citations per query, and
// synthesizes a structured report with recommendations.
package research

import (
	"time"

	"github.com/google/uuid"
	"github.com/spawn-mcp/deep-research/pkg/progress"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
)

// Session owns all accumulated state for one research run. It is
// created at session start and mutated exclusively by the depth-loop
// barrier merge: single writer, no locking needed.
type Session struct {
	ID        string
	Request   schemas.ResearchRequest
	StartTime time.Time
	Strategy  *schemas.Strategy

	learnings []string
	citations []schemas.Citation
	visited   map[string]struct{}

	// Counters for research metadata.
	totalSources   int
	totalSearches  int
	depthCompleted int

	steps    []*schemas.ResearchStep
	reporter progress.Reporter

	status    schemas.SessionStatus
	statusSet bool

	lastStepTime time.Time
}

func newSession(req schemas.ResearchRequest, reporter progress.Reporter) *Session {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Session{
		ID:        uuid.New().String(),
		Request:   req,
		StartTime: time.Now(),
		visited:   make(map[string]struct{}),
		reporter:  reporter,
		status:    schemas.StatusRunning,
	}
}

// addLearnings appends learnings; the sequence never shrinks.
func (s *Session) addLearnings(learnings []string) {
	s.learnings = append(s.learnings, learnings...)
}

// addCitations appends citations without deduplication by URL.
func (s *Session) addCitations(citations []schemas.Citation) {
	s.citations = append(s.citations, citations...)
}

// addVisited records result URLs into the visited set.
func (s *Session) addVisited(urls []string) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		s.visited[u] = struct{}{}
	}
}

// recentLearnings returns up to n of the most recently accumulated
// learnings, in accumulation order.
func (s *Session) recentLearnings(n int) []string {
	if len(s.learnings) <= n {
		return s.learnings
	}
	return s.learnings[len(s.learnings)-n:]
}

// firstLearnings returns up to n learnings in accumulation order.
func (s *Session) firstLearnings(n int) []string {
	if len(s.learnings) <= n {
		return s.learnings
	}
	return s.learnings[:n]
}

// firstCitations returns up to n citations in accumulation order.
func (s *Session) firstCitations(n int) []schemas.Citation {
	if len(s.citations) <= n {
		return s.citations
	}
	return s.citations[:n]
}

// setStatus assigns the terminal status exactly once; later assignments
// are ignored.
func (s *Session) setStatus(status schemas.SessionStatus) {
	if s.statusSet {
		return
	}
	s.status = status
	s.statusSet = true
}

// nextTimestamp returns a step timestamp strictly after the previous
// one, so a persisted step sequence replays in order.
func (s *Session) nextTimestamp() time.Time {
	now := time.Now()
	if !now.After(s.lastStepTime) {
		now = s.lastStepTime.Add(time.Nanosecond)
	}
	s.lastStepTime = now
	return now
}

// beginStep creates a step in in-progress state, appends it to the
// session, and mirrors the transition to the progress reporter.
func (s *Session) beginStep(id string, typ schemas.StepType, title, description string, meta *schemas.StepMetadata) *schemas.ResearchStep {
	step := &schemas.ResearchStep{
		ID:          id,
		Type:        typ,
		Title:       title,
		Description: description,
		Status:      schemas.StepInProgress,
		Timestamp:   s.nextTimestamp(),
		Metadata:    meta,
	}
	s.steps = append(s.steps, step)
	s.reporter.Emit(*step)
	return step
}

// completeStep transitions a step to completed. Terminal steps never
// regress.
func (s *Session) completeStep(step *schemas.ResearchStep) {
	if step.Status == schemas.StepCompleted || step.Status == schemas.StepFailed {
		return
	}
	step.Status = schemas.StepCompleted
	step.Progress = 100
	step.Timestamp = s.nextTimestamp()
	s.reporter.Emit(*step)
}

// failStep transitions a step to failed.
func (s *Session) failStep(step *schemas.ResearchStep) {
	if step.Status == schemas.StepCompleted || step.Status == schemas.StepFailed {
		return
	}
	step.Status = schemas.StepFailed
	step.Timestamp = s.nextTimestamp()
	s.reporter.Emit(*step)
}

// snapshotSteps copies the step sequence for the response.
func (s *Session) snapshotSteps() []schemas.ResearchStep {
	out := make([]schemas.ResearchStep, len(s.steps))
	for i, st := range s.steps {
		out[i] = *st
	}
	return out
}

// uniqueSources is the size of the visited URL set.
func (s *Session) uniqueSources() int { return len(s.visited) }

func (s *Session) duration() time.Duration { return time.Since(s.StartTime) }
