package html_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-enrollment/pkg/model"
	"github.com/goliatone/go-enrollment/pkg/pages"
	"github.com/goliatone/go-enrollment/pkg/render"
	"github.com/goliatone/go-enrollment/pkg/renderers/html"
	"github.com/goliatone/go-enrollment/pkg/renderers/html/components"
)

func sampleForm() model.FormModel {
	return model.FormModel{
		OperationID: "provider-profile",
		Title:       "Finish your profile",
		Fields: []model.Field{
			{
				Name:     "zipCode",
				Type:     model.FieldTypeString,
				Format:   "zip",
				Required: true,
				Label:    "Zip code",
				UIHints:  map[string]string{"autocomplete": "postal-code"},
			},
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
				Name:     "rateMin",
				Type:     model.FieldTypeInteger,
				Format:   "currency",
				Required: true,
				Label:    "From",
				UIHints:  map[string]string{"widget": "range", "prefix": "$", "suffix": "/hr"},
				Validations: []model.ValidationRule{
					{Kind: model.ValidationRuleMin, Params: map[string]string{"value": "10"}},
					{Kind: model.ValidationRuleMax, Params: map[string]string{"value": "100"}},
				},
			},
			{
				Name:    "subjects",
				Type:    model.FieldTypeArray,
				Label:   "Subjects",
				UIHints: map[string]string{"widget": "typeahead", "endpoint": "/api/subjects"},
			},
			{
				Name:  "bio",
				Type:  model.FieldTypeString,
				Label: "About you",
			},
		},
	}
}

func TestRendererRendersPage(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	output, err := renderer.Render(context.Background(), sampleForm(), render.RenderOptions{
		Values: map[string]any{
			"zipCode":  "02451",
			"careDate": "JUST_BROWSING",
			"rateMin":  18,
			"subjects": []string{"Algebra", "Chemistry"},
		},
		Errors:       map[string][]string{"zipCode": {"Enter a 5-digit zip code."}},
		FormErrors:   []string{"Something went wrong"},
		Hidden:       map[string]bool{"bio": true},
		HiddenFields: map[string]string{"_csrf": "token-1"},
		Page: render.PageContext{
			Flow:        "PROVIDER_TUTORING",
			FlowTitle:   "Find tutoring jobs",
			Step:        "profile",
			Position:    3,
			Total:       4,
			ActionURL:   "/enroll/provider-tutoring/profile",
			BackURL:     "/enroll/provider-tutoring/rate",
			SubmitLabel: "Finish",
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(output)

	for _, want := range []string{
		`<title>Finish your profile | Find tutoring jobs</title>`,
		`<link rel="stylesheet" href="/assets/enrollment.css">`,
		`<a class="enroll-back" href="/enroll/provider-tutoring/rate">Back</a>`,
		`aria-valuenow="75"`,
		`action="/enroll/provider-tutoring/profile"`,
		`<input type="hidden" name="_csrf" value="token-1">`,
		`<li>Something went wrong</li>`,
		`<label for="fg-zipCode" class="enroll-label">Zip code</label>`,
		`value="02451"`,
		`aria-describedby="fg-zipCode-error"`,
		`<ul id="fg-zipCode-error" class="enroll-field-errors" role="alert"><li>Enter a 5-digit zip code.</li></ul>`,
		`value="JUST_BROWSING" checked`,
		`type="range" value="18" min="10" max="100"`,
		`<small class="enroll-range-limits">$10 to $100</small>`,
		`value="Algebra,Chemistry"`,
		`data-typeahead="/api/subjects"`,
		`<script src="/assets/typeahead.js" defer></script>`,
		`>Finish</button>`,
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, page)
		}
	}
	if strings.Contains(page, "fg-bio") {
		t.Fatalf("hidden field rendered:\n%s", page)
	}
	if strings.Contains(page, `<label for="fg-careDate"`) {
		t.Fatalf("grouped component should not get a label element:\n%s", page)
	}
}

func TestRendererEscapesValues(t *testing.T) {
	renderer, err := html.New(html.WithAssetsURL("https://cdn.example.com/enroll/"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := model.FormModel{
		Title:  "Name",
		Fields: []model.Field{{Name: "firstName", Type: model.FieldTypeString, Label: "First name"}},
	}
	output, err := renderer.Render(context.Background(), form, render.RenderOptions{
		Values: map[string]any{"firstName": `"><script>alert(1)</script>`},
		Errors: map[string][]string{"firstName": {"<b>bad</b>"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(output)
	if strings.Contains(page, "<script>alert(1)</script>") || strings.Contains(page, "<b>bad</b>") {
		t.Fatalf("unescaped user input in output:\n%s", page)
	}
	if !strings.Contains(page, `href="https://cdn.example.com/enroll/enrollment.css"`) {
		t.Fatalf("stylesheet not resolved against the asset URL:\n%s", page)
	}
	if !strings.Contains(page, `>Continue</button>`) {
		t.Fatalf("expected default submit label:\n%s", page)
	}
	if strings.Contains(page, "enroll-progress") {
		t.Fatalf("progress bar rendered without a position:\n%s", page)
	}
}

func TestRendererCustomComponent(t *testing.T) {
	registry := components.NewDefaultRegistry()
	registry.MustRegister(components.NameInput, components.Descriptor{
		Renderer: func(buf *bytes.Buffer, field model.Field, data components.ComponentData) error {
			buf.WriteString(`<custom-input name="` + field.Name + `"></custom-input>`)
			return nil
		},
		Stylesheets: []string{"/assets/custom.css"},
	})

	renderer, err := html.New(html.WithComponentRegistry(registry), html.WithoutDefaultStyles())
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	output, err := renderer.Render(context.Background(), model.FormModel{
		Fields: []model.Field{{Name: "email", Type: model.FieldTypeString, Label: "Email"}},
	}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(output)
	if !strings.Contains(page, `<custom-input name="email"></custom-input>`) {
		t.Fatalf("custom component not used:\n%s", page)
	}
	if !strings.Contains(page, `href="/assets/custom.css"`) || strings.Contains(page, "enrollment.css") {
		t.Fatalf("unexpected stylesheets:\n%s", page)
	}
}

func TestRendererTemplatesFSOverride(t *testing.T) {
	files := fstest.MapFS{
		"templates/page.tmpl":             {Data: []byte(`<h1>{{ page.Title }}</h1>{% for markup in fields %}{{ markup|safe }}{% endfor %}`)},
		"templates/components/input.tmpl": {Data: []byte(`<input name="{{ name }}">`)},
	}
	renderer, err := html.New(html.WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	output, err := renderer.Render(context.Background(), model.FormModel{
		Title:  "Override",
		Fields: []model.Field{{Name: "zipCode", Type: model.FieldTypeString}},
	}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(string(output), `<h1>Override</h1>`) || !strings.Contains(string(output), `<input name="zipCode">`) {
		t.Fatalf("override templates not used:\n%s", output)
	}
}

func TestRendererUnknownComponent(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	_, err = renderer.Render(context.Background(), model.FormModel{
		Fields: []model.Field{{Name: "x", UIHints: map[string]string{"widget": "missing"}}},
	}, render.RenderOptions{})
	if err == nil {
		t.Fatalf("expected an error for an unregistered widget")
	}
}

func TestAssetsFS(t *testing.T) {
	for _, name := range []string{html.StylesheetName, components.TypeaheadScript} {
		f, err := html.AssetsFS().Open(name)
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		f.Close()
	}
}

func TestRendererRendersEveryCatalogPage(t *testing.T) {
	catalog, err := pages.LoadDefaultCatalog(context.Background())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	for _, id := range catalog.IDs() {
		page, err := catalog.Page(id)
		if err != nil {
			t.Fatalf("page %s: %v", id, err)
		}
		output, err := renderer.Render(context.Background(), page.Form, render.RenderOptions{
			Page: render.PageContext{Title: page.Form.Title, SubmitLabel: page.SubmitLabel()},
		})
		if err != nil {
			t.Fatalf("render %s: %v", id, err)
		}
		for _, field := range page.Form.Fields {
			if !strings.Contains(string(output), `name="`+field.Name+`"`) {
				t.Fatalf("%s: field %s missing from output", id, field.Name)
			}
		}
	}
}

func TestRendererRendersErrorPage(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := renderer.RenderError(html.ErrorPage{
		Status:  404,
		Title:   "Page not found",
		Message: "We could not find <that> step.",
		HomeURL: "/enroll/seeker-child-care",
	})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	markup := string(out)
	for _, want := range []string{
		`data-status="404"`,
		"<title>Page not found</title>",
		"We could not find &lt;that&gt; step.",
		`href="/enroll/seeker-child-care"`,
		`href="/assets/enrollment.css"`,
	} {
		if !strings.Contains(markup, want) {
			t.Fatalf("expected %q in error page:\n%s", want, markup)
		}
	}
}
