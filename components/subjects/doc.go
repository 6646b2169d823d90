// Package subjects answers typeahead queries for the tutoring subject field.
//
// The subject list is not owned here: callers pass the suggestions the page
// catalog declares for Route, so the form and the endpoint share one list.
// An Index is both an in-process lookup (for terminal prompts) and a JSON
// http.Handler returning {"data":[{"value":..,"label":..}]}.
package subjects
