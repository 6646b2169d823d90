// Package openapi exposes the contracts used to read the page catalog. Every
// wizard page is described as an OpenAPI operation whose request body lists
// the form fields; `x-formgen` extensions carry labels, widgets and visibility
// rules while `x-enroll` binds the page to a reducer action and an effect.
// The kin-openapi backed implementation lives under internal/openapi so the
// rest of the module never touches kin-openapi types directly.
package openapi
