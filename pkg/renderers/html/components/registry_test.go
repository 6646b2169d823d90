package components

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-enrollment/pkg/model"
)

func TestRegistryRegisterAndAssets(t *testing.T) {
	registry := New()
	noop := func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		buf.WriteString(field.Name)
		return nil
	}

	if err := registry.Register(" Custom ", Descriptor{
		Renderer:    noop,
		Stylesheets: []string{"/custom.css", "/custom.css"},
		Scripts:     []Script{{Src: "custom.js"}, {Src: "custom.js"}},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("other", Descriptor{Renderer: noop, Scripts: []Script{{Inline: "init()"}}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	descriptor, ok := registry.Descriptor("CUSTOM")
	if !ok || descriptor.Name != "custom" {
		t.Fatalf("descriptor lookup failed: %+v", descriptor)
	}

	styles, scripts := registry.Assets([]string{"custom", "other", "missing"})
	if diff := cmp.Diff([]string{"/custom.css"}, styles); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Script{{Src: "custom.js"}, {Inline: "init()"}}, scripts); diff != "" {
		t.Fatalf("scripts mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryRejectsInvalidDescriptors(t *testing.T) {
	registry := New()
	if err := registry.Register("", Descriptor{Renderer: func(*bytes.Buffer, model.Field, ComponentData) error { return nil }}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := registry.Register("nil", Descriptor{}); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}

func TestRegistryCloneIsolated(t *testing.T) {
	original := NewDefaultRegistry()
	cloned := original.Clone()
	cloned.MustRegister("extra", Descriptor{Renderer: func(*bytes.Buffer, model.Field, ComponentData) error { return nil }})

	if _, ok := original.Descriptor("extra"); ok {
		t.Fatalf("clone mutation leaked into original registry")
	}
}

func TestDefaultRegistryCoversWidgets(t *testing.T) {
	want := []string{
		NameCheckbox, NameCheckboxes, NameDate, NameInput, NamePhone,
		NameRadio, NameRange, NameSelect, NameTextarea, NameTypeahead,
	}
	got := NewDefaultRegistry().Names()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("component names mismatch (-want +got):\n%s", diff)
	}
}

func TestControlData(t *testing.T) {
	field := model.Field{
		Name:     "phone",
		Type:     model.FieldTypeString,
		Format:   "phone",
		Required: true,
		Label:    "Mobile number",
		UIHints:  map[string]string{"helpText": "We text you once.", "autocomplete": "tel-national"},
	}
	data := ControlData(field, ComponentData{Value: "6175551234", Errors: []string{"bad"}})

	checks := map[string]any{
		"id":           "fg-phone",
		"value":        "(617) 555-1234",
		"inputType":    "tel",
		"invalid":      true,
		"describedBy":  "fg-phone-help fg-phone-error",
		"autocomplete": "tel-national",
	}
	for key, want := range checks {
		if diff := cmp.Diff(want, data[key]); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", key, diff)
		}
	}
}

func TestControlDataOptions(t *testing.T) {
	field := model.Field{
		Name: "availability",
		Type: model.FieldTypeArray,
		Options: []model.Option{
			{Value: "MONDAY", Label: "Monday"},
			{Value: "TUESDAY", Label: "Tuesday"},
		},
	}
	data := ControlData(field, ComponentData{Value: []string{"TUESDAY"}})
	want := []map[string]any{
		{"id": "fg-availability-0", "value": "MONDAY", "label": "Monday", "checked": false},
		{"id": "fg-availability-1", "value": "TUESDAY", "label": "Tuesday", "checked": true},
	}
	if diff := cmp.Diff(want, data["options"]); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}
