package components

// Component names registered by NewDefaultRegistry. They match the values of
// model.Field.Widget and the `widget` hint of the page catalog.
const (
	NameInput      = "input"
	NamePhone      = "phone"
	NameDate       = "date"
	NameSelect     = "select"
	NameRadio      = "radio"
	NameCheckbox   = "checkbox"
	NameCheckboxes = "checkboxes"
	NameTextarea   = "textarea"
	NameRange      = "range"
	NameTypeahead  = "typeahead"
)
