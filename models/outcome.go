package models

import "fmt"

// OutcomeKind discriminates the Outcome variants.
type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeNoSuggestion   OutcomeKind = "no_suggestion"
	OutcomeTransientError OutcomeKind = "transient_error"
	OutcomeLoginFailure   OutcomeKind = "login_failure"
)

// Sentinel stack entries written for outcomes that carry no stack.
const (
	StackNoSuggestions = "No suggestions available"
	StackNoResult      = "no result found"
	stackErrorPrefix   = "Error: "
)

// Outcome is the classified result of one domain attempt.
// Stack is only meaningful for OutcomeSuccess; Message only for the error kinds.
type Outcome struct {
	Kind    OutcomeKind
	Stack   []string
	Message string
}

// Success returns a Success outcome. An empty stack is recorded as
// StackNoResult so the record always carries at least one line.
func Success(stack []string) Outcome {
	if len(stack) == 0 {
		stack = []string{StackNoResult}
	}
	return Outcome{Kind: OutcomeSuccess, Stack: stack}
}

// NoSuggestion returns the outcome for a domain the search box never matched.
func NoSuggestion() Outcome {
	return Outcome{Kind: OutcomeNoSuggestion}
}

// TransientError returns the outcome for an unexpected per-domain failure.
func TransientError(format string, args ...any) Outcome {
	return Outcome{Kind: OutcomeTransientError, Message: fmt.Sprintf(format, args...)}
}

// LoginFailure returns the outcome for a credential that could not log in.
func LoginFailure(message string) Outcome {
	return Outcome{Kind: OutcomeLoginFailure, Message: message}
}

// StackLines returns the technology_stack payload written for this outcome.
// Non-success kinds get the sentinel lines existing result files use.
func (o Outcome) StackLines() []string {
	switch o.Kind {
	case OutcomeSuccess:
		out := make([]string, len(o.Stack))
		copy(out, o.Stack)
		return out
	case OutcomeNoSuggestion:
		return []string{StackNoSuggestions}
	default:
		return []string{stackErrorPrefix + o.Message}
	}
}
