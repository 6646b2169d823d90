package graphql

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated is matched by Errors carrying an UNAUTHENTICATED code
	// and by 401 HTTP responses.
	ErrUnauthenticated = errors.New("graphql: unauthenticated")
	// ErrNoData is returned when a response carries neither errors nor the
	// requested root field.
	ErrNoData = errors.New("graphql: response has no data")
	// ErrResponseTooLarge is returned when a successful response body exceeds
	// the client's byte limit.
	ErrResponseTooLarge = errors.New("graphql: response too large")
)

// HTTPError reports a non-2xx transport response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("graphql: http status %d", e.StatusCode)
	}
	return fmt.Sprintf("graphql: http status %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthenticated && e.StatusCode == 401
}

// Error is a single entry of the response `errors` array.
type Error struct {
	Message string
	Path    []string
	Code    string
}

// Errors is the response `errors` array.
type Errors []Error

func (e Errors) Error() string {
	if len(e) == 0 {
		return "graphql: unknown error"
	}
	messages := make([]string, 0, len(e))
	for _, item := range e {
		msg := item.Message
		if len(item.Path) > 0 {
			msg += " (" + strings.Join(item.Path, ".") + ")"
		}
		messages = append(messages, msg)
	}
	return "graphql: " + strings.Join(messages, "; ")
}

func (e Errors) Is(target error) bool {
	if target != ErrUnauthenticated {
		return false
	}
	for _, item := range e {
		if strings.EqualFold(item.Code, "UNAUTHENTICATED") {
			return true
		}
	}
	return false
}

// Payload returns the errors keyed by dotted path; errors without a path are
// collected under "form".
func (e Errors) Payload() map[string][]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string][]string, len(e))
	for _, item := range e {
		key := "form"
		if len(item.Path) > 0 {
			key = strings.Join(item.Path, ".")
		}
		out[key] = append(out[key], item.Message)
	}
	return out
}

// InputErrors is the error branch of a mutation union payload.
type InputErrors []InputError

func (e InputErrors) Error() string {
	if len(e) == 0 {
		return "graphql: mutation rejected"
	}
	messages := make([]string, 0, len(e))
	for _, item := range e {
		if item.Field != "" {
			messages = append(messages, item.Field+": "+item.Message)
			continue
		}
		messages = append(messages, item.Message)
	}
	return "graphql: mutation rejected: " + strings.Join(messages, "; ")
}

// Payload returns the input errors keyed by field name.
func (e InputErrors) Payload() map[string][]string {
	if len(e) == 0 {
		return map[string][]string{"form": {"We could not save your information."}}
	}
	out := make(map[string][]string, len(e))
	for _, item := range e {
		key := item.Field
		if key == "" {
			key = "form"
		}
		out[key] = append(out[key], item.Message)
	}
	return out
}
