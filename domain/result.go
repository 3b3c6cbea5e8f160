package domain

import "strings"

const (
	CodeConcurrencyFailure = "ConcurrencyFailure"
	CodeDuplicateKey       = "DuplicateKey"
)

// ResultError describes one reason an operation did not succeed.
type ResultError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result is the outcome of a create, update or delete. A failed Result is a
// recoverable condition reported to the caller, not an error.
type Result struct {
	Succeeded bool          `json:"succeeded"`
	Errors    []ResultError `json:"errors,omitempty"`
}

func Success() Result {
	return Result{Succeeded: true}
}

func Failed(errs ...ResultError) Result {
	return Result{Errors: errs}
}

// ConcurrencyFailure is returned when the stored concurrency stamp no longer
// matches the one the caller loaded.
func ConcurrencyFailure() Result {
	return Failed(ResultError{
		Code:        CodeConcurrencyFailure,
		Description: "Optimistic concurrency failure, object has been modified.",
	})
}

func DuplicateKey(description string) Result {
	return Failed(ResultError{Code: CodeDuplicateKey, Description: description})
}

// Has reports whether the result carries an error with the given code.
func (r Result) Has(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

func (r Result) IsConcurrencyFailure() bool {
	return r.Has(CodeConcurrencyFailure)
}

func (r Result) String() string {
	if r.Succeeded {
		return "Succeeded"
	}
	codes := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		codes = append(codes, e.Code)
	}
	return "Failed : " + strings.Join(codes, ",")
}
