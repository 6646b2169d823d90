// Package template defines the renderer-agnostic template interface. The
// gotemplate subpackage adapts pongo2 to it and registers the filters page
// templates use (trim, phone, date, dollars).
package template
