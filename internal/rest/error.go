package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is an error carrying the HTTP status it should surface as.
// Every failure path in the security layer returns one of these so the
// boundary can translate uniformly.
type Error struct {
	// Status is the HTTP status code.
	Status int `json:"status"`

	// Detail is a human-readable explanation. Optional.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference identifying this occurrence. Optional.
	Instance string `json:"instance,omitempty"`
}

func (e *Error) Error() string {
	title := http.StatusText(e.Status)
	if title == "" {
		title = "Unknown Problem"
	}
	if e.Detail == "" {
		return fmt.Sprintf("%d %s", e.Status, title)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, title, e.Detail)
}

func New(status int, detail string) *Error {
	return &Error{Status: status, Detail: detail}
}

// Newf is New with a formatted detail message.
func Newf(status int, format string, args ...any) *Error {
	return &Error{Status: status, Detail: fmt.Sprintf(format, args...)}
}

// StatusOf extracts the HTTP status from err. Errors that don't carry one
// are treated as internal server errors.
func StatusOf(err error) int {
	var restErr *Error
	if errors.As(err, &restErr) {
		return restErr.Status
	}
	return http.StatusInternalServerError
}

// Problem is an RFC 7807 problem document.
type Problem struct {
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// ProblemOf converts any error into a problem document.
func ProblemOf(err error) Problem {
	status := StatusOf(err)
	title := http.StatusText(status)
	if title == "" {
		title = "Unknown Problem"
	}
	p := Problem{
		Title:  title,
		Status: status,
	}
	var restErr *Error
	if errors.As(err, &restErr) {
		p.Detail = restErr.Detail
		p.Instance = restErr.Instance
	} else if err != nil {
		p.Detail = err.Error()
	}
	return p
}

// WriteProblem renders err as an application/problem+json response.
func WriteProblem(w http.ResponseWriter, err error) {
	p := ProblemOf(err)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
