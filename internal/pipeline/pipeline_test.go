package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/triage/internal/oracle"
	"github.com/danielolaszy/triage/internal/store"
	"github.com/danielolaszy/triage/pkg/models"
)

// scriptedOracle answers per issue number and records every bundle it sees.
type scriptedOracle struct {
	answers map[int]oracle.Classification
	errors  map[int]error
	seen    []models.EvidenceBundle
}

func newScriptedOracle() *scriptedOracle {
	return &scriptedOracle{
		answers: make(map[int]oracle.Classification),
		errors:  make(map[int]error),
	}
}

func (s *scriptedOracle) Classify(_ context.Context, bundle models.EvidenceBundle) (oracle.Classification, error) {
	s.seen = append(s.seen, bundle)
	if err, ok := s.errors[bundle.Issue.Number]; ok {
		return oracle.Classification{}, err
	}
	if answer, ok := s.answers[bundle.Issue.Number]; ok {
		return answer, nil
	}
	return oracle.Classification{
		IsUserError: models.VerdictNotUserError,
		Confidence:  models.ConfidenceMedium,
		Reasoning:   fmt.Sprintf("default answer for #%d", bundle.Issue.Number),
	}, nil
}

func (s *scriptedOracle) calls() int { return len(s.seen) }

func openIssue(number int, title string) models.Issue {
	return models.Issue{
		Number: number,
		Title:  title,
		State:  "open",
		URL:    fmt.Sprintf("https://github.com/pytorch/pytorch/issues/%d", number),
	}
}

func TestRunClassifiesAndMerges(t *testing.T) {
	stub := newScriptedOracle()
	stub.answers[1] = oracle.Classification{
		IsUserError: models.VerdictUserError,
		Confidence:  models.ConfidenceHigh,
		Reasoning:   "misread the docs",
	}

	p := New(stub, store.New())
	stats, err := p.Run(context.Background(), []models.Issue{
		openIssue(1, "How do I disable autograd?"),
		openIssue(2, "Segfault in torch.compile"),
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Considered)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 2, p.Store().Len())

	got, ok := p.Store().Get(1)
	require.True(t, ok)
	assert.Equal(t, models.VerdictUserError, got.IsUserError)

	summary := p.Store().Summary()
	assert.Equal(t, summary.Total, summary.UserErrors+summary.NonUserErrors+summary.Uncertain)
}

func TestRunSkipCorrectness(t *testing.T) {
	stub := newScriptedOracle()
	p := New(stub, store.New())

	pr := openIssue(2, "Fix the segfault")
	pr.PullRequest = true

	stats, err := p.Run(context.Background(), []models.Issue{
		openIssue(1, "Segfault in torch.compile"),
		pr,
		openIssue(3, "DISABLED foo"),
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.NonIssues)
	assert.Equal(t, 1, stats.Disabled)

	// Noise never enters the store.
	assert.False(t, p.Store().Contains(2))
	assert.False(t, p.Store().Contains(3))
	assert.True(t, p.Store().Contains(1))
	assert.Equal(t, 1, stub.calls())
}

func TestRunIdempotence(t *testing.T) {
	issues := []models.Issue{
		openIssue(1, "Bad results from torch.mean"),
		openIssue(2, "Question about device placement"),
	}

	stub := newScriptedOracle()
	s := store.New()
	p := New(stub, s)

	_, err := p.Run(context.Background(), issues, Options{})
	require.NoError(t, err)
	firstDoc := s.Document()
	firstCalls := stub.calls()

	// Second run over the same input and store: a no-op for every issue.
	_, err = p.Run(context.Background(), issues, Options{})
	require.NoError(t, err)

	assert.Equal(t, firstCalls, stub.calls(), "cached issues must not be re-classified")
	assert.Equal(t, firstDoc, s.Document())
}

func TestRunCachePrecedence(t *testing.T) {
	seeded := store.New()
	seeded.Merge(models.ClassificationResult{
		IssueNumber: 5,
		Title:       "Old title",
		IsUserError: models.VerdictUserError,
		Confidence:  models.ConfidenceHigh,
		Reasoning:   "x",
	})

	stub := newScriptedOracle()
	stub.answers[5] = oracle.Classification{
		IsUserError: models.VerdictNotUserError,
		Confidence:  models.ConfidenceHigh,
		Reasoning:   "the oracle changed its mind",
	}

	p := New(stub, seeded)
	stats, err := p.Run(context.Background(), []models.Issue{openIssue(5, "New title")}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Cached)
	assert.Equal(t, 0, stub.calls())

	got, ok := seeded.Get(5)
	require.True(t, ok)
	assert.Equal(t, models.VerdictUserError, got.IsUserError)
	assert.Equal(t, "x", got.Reasoning)
	assert.Equal(t, "Old title", got.Title)
}

func TestRunOracleFailureContainment(t *testing.T) {
	stub := newScriptedOracle()
	stub.errors[2] = errors.New("anthropic api error: 529 overloaded")

	p := New(stub, store.New())
	stats, err := p.Run(context.Background(), []models.Issue{
		openIssue(1, "first"),
		openIssue(2, "second"),
		openIssue(3, "third"),
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Processed)
	require.Equal(t, 3, p.Store().Len())

	second, ok := p.Store().Get(2)
	require.True(t, ok)
	assert.Equal(t, models.VerdictUnknown, second.IsUserError)
	assert.Equal(t, models.ConfidenceLow, second.Confidence)

	first, _ := p.Store().Get(1)
	third, _ := p.Store().Get(3)
	assert.Equal(t, models.VerdictNotUserError, first.IsUserError)
	assert.Equal(t, models.VerdictNotUserError, third.IsUserError)
}

func TestRunRejectsMalformedRecords(t *testing.T) {
	stub := newScriptedOracle()
	p := New(stub, store.New())

	stats, err := p.Run(context.Background(), []models.Issue{
		{Number: 0, Title: "no identifier"},
		{Number: 4, Title: ""},
		openIssue(5, "well formed"),
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Malformed)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, p.Store().Len())
}

func TestRunHonorsLimit(t *testing.T) {
	stub := newScriptedOracle()
	p := New(stub, store.New())

	var issues []models.Issue
	for i := 1; i <= 10; i++ {
		issues = append(issues, openIssue(i, fmt.Sprintf("issue %d", i)))
	}

	stats, err := p.Run(context.Background(), issues, Options{Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Considered)
	assert.Equal(t, 3, p.Store().Len())
}

func TestRunCommentEvidenceFlag(t *testing.T) {
	stub := newScriptedOracle()
	p := New(stub, store.New())

	withComments := func(_ context.Context, issue models.Issue) ([]models.Comment, bool, error) {
		switch issue.Number {
		case 1:
			return []models.Comment{{Body: "a comment"}}, true, nil
		case 2:
			return nil, true, nil // fetched, zero comments
		default:
			return nil, false, nil // never fetched
		}
	}

	_, err := p.Run(context.Background(), []models.Issue{
		openIssue(1, "with comments"),
		openIssue(2, "zero comments"),
		openIssue(3, "comments unavailable"),
	}, Options{Comments: withComments})
	require.NoError(t, err)

	require.Len(t, stub.seen, 3)
	assert.True(t, stub.seen[0].CommentsFetched)
	assert.Len(t, stub.seen[0].Comments, 1)
	assert.True(t, stub.seen[1].CommentsFetched)
	assert.Empty(t, stub.seen[1].Comments)
	assert.False(t, stub.seen[2].CommentsFetched)
}

func TestRunCommentFetchFailureDegrades(t *testing.T) {
	stub := newScriptedOracle()
	p := New(stub, store.New())

	failing := func(_ context.Context, _ models.Issue) ([]models.Comment, bool, error) {
		return nil, false, errors.New("rate limited")
	}

	_, err := p.Run(context.Background(), []models.Issue{openIssue(1, "comment fetch fails")}, Options{Comments: failing})
	require.NoError(t, err)

	require.Len(t, stub.seen, 1)
	assert.False(t, stub.seen[0].CommentsFetched)
	assert.True(t, p.Store().Contains(1))
}

func TestRunPersistsAfterEachClassification(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "results.json")

	stub := newScriptedOracle()
	p := New(stub, store.New())

	_, err := p.Run(context.Background(), []models.Issue{
		openIssue(1, "first"),
		openIssue(2, "second"),
	}, Options{OutputPath: outputPath})
	require.NoError(t, err)

	// Resume path: reload the persisted store and run again over a
	// superset; only the new issue is classified.
	reloaded, err := store.Load(outputPath)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())

	p2 := New(stub, reloaded)
	stats, err := p2.Run(context.Background(), []models.Issue{
		openIssue(1, "first"),
		openIssue(2, "second"),
		openIssue(3, "third"),
	}, Options{OutputPath: outputPath})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Cached)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 3, reloaded.Len())
}

func TestRunCancellationBetweenIssues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := newScriptedOracle()
	p := New(stub, store.New())

	_, err := p.Run(ctx, []models.Issue{openIssue(1, "never reached")}, Options{})
	assert.Error(t, err)
	assert.Equal(t, 0, stub.calls())
}

func TestRunOutputDocumentOmitsSkipped(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "results.json")

	stub := newScriptedOracle()
	p := New(stub, store.New())

	pr := openIssue(8, "A pull request")
	pr.PullRequest = true

	_, err := p.Run(context.Background(), []models.Issue{
		openIssue(7, "DISABLED foo"),
		pr,
		openIssue(9, "real issue"),
	}, Options{OutputPath: outputPath})
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "DISABLED foo")
	assert.NotContains(t, string(data), "A pull request")
	assert.Contains(t, string(data), "real issue")
}
