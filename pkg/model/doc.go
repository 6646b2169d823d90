// Package model defines the typed form model consumed by renderers and page
// controllers. Builders reside in internal/model but return the types defined
// here. Validation rules expose canonical identifiers (min/max,
// minLength/maxLength, minItems/maxItems, pattern) with string parameters so
// renderers can map them onto HTML attributes and the fields package can
// enforce them on submission. The `x-formgen` extension of each page operation
// flows into Field.UIHints (placeholder, helpText, widget, inputType,
// autocomplete, prefix/suffix) and Field.VisibleWhen.
package model
