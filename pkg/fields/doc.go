// Package fields holds the input primitives behind every enrollment form:
// phone numbers, birth dates, zip codes, emails, names, free text and whole
// dollar amounts. Each primitive normalises raw input into the canonical form
// stored in state and formats it back for display.
//
// Validate dispatches a model.Field to the right primitive and applies the
// field's validation rules, returning the typed value and user facing
// messages.
package fields
