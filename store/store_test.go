package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/stackscout/models"
)

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func readDocument(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc []map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestOpenResults_CreatesEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")

	s, err := OpenResults(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestResultStore_AppendPersistsEachRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	s, err := OpenResults(path)
	require.NoError(t, err)

	require.NoError(t, s.Append(models.NewRecord("x.com", models.Success([]string{"Nginx", "React"}), fixedTime)))
	require.NoError(t, s.Append(models.NewRecord("broken.test", models.NoSuggestion(), fixedTime)))

	doc := readDocument(t, path)
	require.Len(t, doc, 2)
	assert.Equal(t, "x.com", doc[0]["domain"])
	assert.Equal(t, []any{"Nginx", "React"}, doc[0]["technology_stack"])
	assert.Equal(t, "success", doc[0]["outcome"])
	assert.Equal(t, "broken.test", doc[1]["domain"])
	assert.Equal(t, []any{models.StackNoSuggestions}, doc[1]["technology_stack"])
	assert.Equal(t, "no_suggestion", doc[1]["outcome"])
}

func TestResultStore_ReopenPreservesRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	s, err := OpenResults(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(models.NewRecord("x.com", models.Success([]string{"Go"}), fixedTime)))

	reopened, err := OpenResults(path)
	require.NoError(t, err)
	require.NoError(t, reopened.Append(models.NewRecord("y.com", models.Success([]string{"PHP"}), fixedTime)))

	recs := reopened.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "x.com", recs[0].Domain)
	assert.Equal(t, "y.com", recs[1].Domain)
}

func TestResultStore_LoadsLegacyRecordsWithoutOutcome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	legacy := `[{"domain": "old.com", "technology_stack": ["No suggestions available"]}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s, err := OpenResults(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(models.NewRecord("new.com", models.Success([]string{"Go"}), fixedTime)))

	doc := readDocument(t, path)
	require.Len(t, doc, 2)
	assert.Equal(t, "old.com", doc[0]["domain"])
	_, hasOutcome := doc[0]["outcome"]
	assert.False(t, hasOutcome)
}

func TestResultStore_DoesNotDeduplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	s, err := OpenResults(path)
	require.NoError(t, err)

	rec := models.NewRecord("x.com", models.Success([]string{"Go"}), fixedTime)
	require.NoError(t, s.Append(rec))
	require.NoError(t, s.Append(rec))

	assert.Len(t, readDocument(t, path), 2)
}

func TestResultStore_CorruptDocumentIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"domain":`), 0o644))

	_, err := OpenResults(path)
	assert.Error(t, err)
}

func TestResultStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenResults(filepath.Join(dir, "results.json"))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(models.NewRecord("x.com", models.Success([]string{"Go"}), fixedTime)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "results.json", entries[0].Name())
}

func TestSideLog_AppendsLinesWithoutDedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "side.txt")

	l, err := OpenSideLog(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, l.Append("broken.test"))
	require.NoError(t, l.Append("other.test"))
	require.NoError(t, l.Append("broken.test"))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"broken.test", "other.test", "broken.test"},
		strings.Fields(string(data)))
}

func TestSideLog_KeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "side.txt")
	require.NoError(t, os.WriteFile(path, []byte("earlier.test\n"), 0o644))

	l, err := OpenSideLog(path)
	require.NoError(t, err)
	require.NoError(t, l.Append("later.test"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "earlier.test\nlater.test\n", string(data))
}

type failingRecorder struct{ calls int }

func (f *failingRecorder) Append(models.ResultRecord) error {
	f.calls++
	return errors.New("disk full")
}

func TestMulti_AttemptsEveryRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	s, err := OpenResults(path)
	require.NoError(t, err)
	bad := &failingRecorder{}

	m := Multi{bad, s}
	err = m.Append(models.NewRecord("x.com", models.Success([]string{"Go"}), fixedTime))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, bad.calls)
	assert.Equal(t, 1, s.Len())
}

func TestSQLiteStore_AppendKeepsEveryAttempt(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Append(models.NewRecord("x.com", models.Success([]string{"Go"}), fixedTime)))
	require.NoError(t, s.Append(models.NewRecord("x.com", models.TransientError("boom"), fixedTime)))
	require.NoError(t, s.Append(models.NewRecord("y.com", models.NoSuggestion(), fixedTime)))

	n, err := s.CountByDomain("x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.CountByDomain("z.com")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
