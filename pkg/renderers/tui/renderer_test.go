package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-enrollment/pkg/model"
	"github.com/goliatone/go-enrollment/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	inputConfigs []InputConfig
	selectConfig []SelectConfig
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputConfigs = append(s.inputConfigs, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectConfig = append(s.selectConfig, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func accountForm() model.FormModel {
	return model.FormModel{
		Title: "Create your account",
		Fields: []model.Field{
			{Name: "zipCode", Type: model.FieldTypeString, Format: "zip", Required: true, Label: "Zip code"},
			{
				Name:     "careDate",
				Type:     model.FieldTypeString,
				Required: true,
				Label:    "Start date",
				UIHints:  map[string]string{"widget": "radio"},
				Options: []model.Option{
					{Value: "RIGHT_NOW", Label: "Right now"},
					{Value: "JUST_BROWSING", Label: "Just browsing"},
				},
			},
			{
				Name:  "availability",
				Type:  model.FieldTypeArray,
				Label: "Days",
				Options: []model.Option{
					{Value: "MONDAY", Label: "Monday"},
					{Value: "TUESDAY", Label: "Tuesday"},
					{Value: "FRIDAY", Label: "Friday"},
				},
			},
			{Name: "cprTrained", Type: model.FieldTypeBoolean, Label: "CPR trained"},
			{Name: "password", Type: model.FieldTypeString, Format: "password", Required: true, Label: "Password"},
			{Name: "bio", Type: model.FieldTypeString, Format: "textarea", Label: "About you"},
		},
	}
}

func TestCollectPromptsVisibleFields(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"12", "02451"},
		selectIdx: []int{1},
		multiIdx:  [][]int{{0, 2}},
		confirm:   []bool{true},
		passwords: []string{"correct horse"},
	}
	renderer, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	values, err := renderer.Collect(context.Background(), accountForm(), render.RenderOptions{
		Hidden: map[string]bool{"bio": true},
		Page:   render.PageContext{Position: 2, Total: 5},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := map[string][]string{
		"zipCode":      {"02451"},
		"careDate":     {"JUST_BROWSING"},
		"availability": {"MONDAY", "FRIDAY"},
		"cprTrained":   {"true"},
		"password":     {"correct horse"},
	}
	if diff := cmp.Diff(want, map[string][]string(values)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if driver.inputPos != 2 {
		t.Fatalf("invalid zip should be asked again, got %d prompts", driver.inputPos)
	}
	if len(driver.infoMessages) < 2 || driver.infoMessages[0] != "[2/5] Create your account" {
		t.Fatalf("unexpected info messages: %v", driver.infoMessages)
	}
}

func TestCollectPrefillsStoredValues(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"02451"},
		selectIdx: []int{0},
		multiIdx:  [][]int{{1}},
		confirm:   []bool{false},
		passwords: []string{"correct horse"},
		textAreas: []string{""},
	}
	renderer, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	_, err = renderer.Collect(context.Background(), accountForm(), render.RenderOptions{
		Values: map[string]any{"zipCode": "02451", "careDate": "JUST_BROWSING"},
		Errors: map[string][]string{"zipCode": {"Zip code not served"}},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got := driver.inputConfigs[0].Default; got != "02451" {
		t.Fatalf("zip default = %q", got)
	}
	if got := driver.selectConfig[0].DefaultIndex; got != 1 {
		t.Fatalf("careDate default index = %d", got)
	}
	if diff := cmp.Diff([]string{"Create your account", "! Zip code: Zip code not served"}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSerializesFormat(t *testing.T) {
	form := model.FormModel{Fields: []model.Field{
		{Name: "firstName", Type: model.FieldTypeString, Required: true},
		{Name: "lastName", Type: model.FieldTypeString, Required: true},
	}}
	cases := []struct {
		format OutputFormat
		want   string
		ctype  string
	}{
		{OutputFormatJSON, `{"firstName":["Ada"],"lastName":["Lovelace"]}`, "application/json"},
		{OutputFormatFormURLEncoded, "firstName=Ada&lastName=Lovelace", "application/x-www-form-urlencoded"},
		{OutputFormatPrettyText, "firstName=Ada\nlastName=Lovelace\n", "text/plain"},
	}
	for _, tc := range cases {
		driver := &stubDriver{inputs: []string{"Ada", "Lovelace"}}
		renderer, err := New(WithPromptDriver(driver), WithOutputFormat(tc.format))
		if err != nil {
			t.Fatalf("new renderer: %v", err)
		}
		out, err := renderer.Render(context.Background(), form, render.RenderOptions{})
		if err != nil {
			t.Fatalf("render %s: %v", tc.format, err)
		}
		if string(out) != tc.want {
			t.Fatalf("%s output = %q, want %q", tc.format, out, tc.want)
		}
		if renderer.ContentType() != tc.ctype {
			t.Fatalf("%s content type = %q", tc.format, renderer.ContentType())
		}
	}
}

func TestTypeaheadSuggestions(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Algebra, Chemistry"}}
	source := func(_ context.Context, endpoint, query string) ([]model.Option, error) {
		if endpoint != "/api/subjects" || query != "" {
			t.Fatalf("unexpected lookup %s?q=%s", endpoint, query)
		}
		return []model.Option{{Value: "algebra", Label: "Algebra"}, {Value: "biology", Label: "Biology"}}, nil
	}
	renderer, err := New(WithPromptDriver(driver), WithOptionSource(source))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := model.FormModel{Fields: []model.Field{{
		Name:    "subjects",
		Type:    model.FieldTypeArray,
		Label:   "Subjects",
		UIHints: map[string]string{"widget": "typeahead", "endpoint": "/api/subjects"},
	}}}

	values, err := renderer.Collect(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got := driver.inputConfigs[0].Help; got != "Suggestions: Algebra, Biology" {
		t.Fatalf("help = %q", got)
	}
	if diff := cmp.Diff([]string{"Algebra, Chemistry"}, values["subjects"]); diff != "" {
		t.Fatalf("subjects mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectPropagatesDriverErrors(t *testing.T) {
	renderer, err := New(WithPromptDriver(&stubDriver{}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := model.FormModel{Fields: []model.Field{{Name: "zipCode", Type: model.FieldTypeString}}}
	if _, err := renderer.Collect(context.Background(), form, render.RenderOptions{}); err == nil {
		t.Fatalf("expected driver error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Collect(ctx, form, render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
