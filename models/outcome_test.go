package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOutcome_StackLines(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    []string
	}{
		{"success", Success([]string{"Nginx", "React"}), []string{"Nginx", "React"}},
		{"empty success", Success(nil), []string{"no result found"}},
		{"no suggestion", NoSuggestion(), []string{"No suggestions available"}},
		{"transient", TransientError("timeout after %s", "15s"), []string{"Error: timeout after 15s"}},
		{"login failure", LoginFailure("bad password"), []string{"Error: bad password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.StackLines())
		})
	}
}

func TestOutcome_StackLinesReturnsCopy(t *testing.T) {
	o := Success([]string{"Nginx"})
	lines := o.StackLines()
	lines[0] = "changed"
	assert.Equal(t, "Nginx", o.Stack[0])
}

func TestNewRecord(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rec := NewRecord("example.com", TransientError("boom"), at)
	assert.Equal(t, "example.com", rec.Domain)
	assert.Equal(t, []string{"Error: boom"}, rec.TechnologyStack)
	assert.Equal(t, OutcomeTransientError, rec.Outcome)
	assert.Equal(t, "boom", rec.Message)
	if assert.NotNil(t, rec.RecordedAt) {
		assert.True(t, at.Equal(*rec.RecordedAt))
	}
}

func TestCredential_StringHidesSecret(t *testing.T) {
	c := Credential{Identity: "user@example.com", Secret: "hunter2"}
	assert.NotContains(t, c.String(), "hunter2")
	assert.Contains(t, c.String(), "user@example.com")
}
