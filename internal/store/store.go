// Package store holds classification results keyed by issue number and
// persists them as a JSON document with aggregate summary statistics.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/pkg/models"
)

// Document is the persisted shape of a result store: the summary counts plus
// the ordered result records. Re-reading a document and re-running the
// pipeline reproduces skip-cached behavior exactly.
type Document struct {
	Summary models.Summary                `json:"summary"`
	Issues  []models.ClassificationResult `json:"issues"`
}

// Store is an in-memory mapping from issue number to its classification
// result. At most one result exists per issue number, and once present a
// result is never replaced.
type Store struct {
	results map[int]models.ClassificationResult
}

// New returns an empty store.
func New() *Store {
	return &Store{results: make(map[int]models.ClassificationResult)}
}

// Load reads a previously persisted document. A missing file yields an empty
// store; an unparseable file is an error, since proceeding would silently
// discard history.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug("no prior results found, starting empty", "path", path)
			return New(), nil
		}
		return nil, fmt.Errorf("failed to read results from %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse results from %s: %w", path, err)
	}

	s := New()
	for _, result := range doc.Issues {
		if result.IssueNumber <= 0 {
			return nil, fmt.Errorf("failed to parse results from %s: record without issue_number", path)
		}
		s.results[result.IssueNumber] = result
	}

	logging.Info("loaded cached results", "path", path, "count", len(s.results))
	return s, nil
}

// Contains reports whether a result already exists for the issue number.
func (s *Store) Contains(issueNumber int) bool {
	_, ok := s.results[issueNumber]
	return ok
}

// Get returns the result for an issue number, if present.
func (s *Store) Get(issueNumber int) (models.ClassificationResult, bool) {
	result, ok := s.results[issueNumber]
	return result, ok
}

// Merge inserts results into the store. Existing entries take precedence: a
// new result for an already-classified issue is dropped, never overwritten.
// This is what makes re-runs idempotent.
func (s *Store) Merge(results ...models.ClassificationResult) {
	for _, result := range results {
		if _, exists := s.results[result.IssueNumber]; exists {
			logging.Debug("keeping cached result", "issue_number", result.IssueNumber)
			continue
		}
		s.results[result.IssueNumber] = result
	}
}

// Len returns the number of classified issues in the store.
func (s *Store) Len() int {
	return len(s.results)
}

// Results returns all results ordered by issue number, for deterministic
// output.
func (s *Store) Results() []models.ClassificationResult {
	out := make([]models.ClassificationResult, 0, len(s.results))
	for _, result := range s.results {
		out = append(out, result)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].IssueNumber < out[j].IssueNumber
	})
	return out
}

// Summary recomputes the aggregate counts from the current mapping. It is a
// pure reduction: the three category counts partition the total exactly.
func (s *Store) Summary() models.Summary {
	summary := models.Summary{Total: len(s.results)}
	for _, result := range s.results {
		switch result.IsUserError {
		case models.VerdictUserError:
			summary.UserErrors++
		case models.VerdictNotUserError:
			summary.NonUserErrors++
		default:
			summary.Uncertain++
		}
	}
	return summary
}

// Document builds the persistable document from the current mapping.
func (s *Store) Document() Document {
	return Document{
		Summary: s.Summary(),
		Issues:  s.Results(),
	}
}

// WriteTo serializes the document to a writer.
func (s *Store) WriteTo(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Document()); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

// Save persists the document atomically: it writes to a temporary file in
// the target directory and renames it into place, so a crash mid-write can
// never leave a truncated document behind.
func (s *Store) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".results-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary results file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := s.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary results file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace results file %s: %w", path, err)
	}

	logging.Debug("results persisted", "path", path, "count", len(s.results))
	return nil
}
