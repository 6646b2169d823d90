package flow

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-enrollment/pkg/graphql"
	"github.com/goliatone/go-enrollment/pkg/visibility"
)

func loadDefault(t *testing.T) *Registry {
	t.Helper()
	reg, err := LoadDefault(
		WithTarget("booking", "https://book.example.com/"),
		WithTarget("marketing", "https://www.example.com"),
	)
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	return reg
}

func TestLoadDefaultShipsEveryFunnel(t *testing.T) {
	t.Parallel()

	reg := loadDefault(t)
	var want []Name
	for _, persona := range []string{"PROVIDER", "SEEKER"} {
		for _, vertical := range []string{"CHILD_CARE", "HOUSEKEEPING", "PET_CARE", "SENIOR_CARE", "TUTORING"} {
			want = append(want, Name(persona+"_"+vertical))
		}
	}
	if diff := cmp.Diff(want, reg.Names()); diff != "" {
		t.Fatalf("flow names mismatch (-want +got):\n%s", diff)
	}

	for _, name := range reg.Names() {
		f, _ := reg.Flow(name)
		if !strings.HasPrefix(f.CompleteURL, "https://") {
			t.Fatalf("%s: completion url not expanded: %q", name, f.CompleteURL)
		}
		if !strings.HasSuffix(string(name), string(f.Vertical)) {
			t.Fatalf("%s: vertical mismatch %q", name, f.Vertical)
		}
	}
}

func TestNextSkipsStepsWhoseRuleFails(t *testing.T) {
	t.Parallel()

	reg := loadDefault(t)
	browsing := visibility.Context{Values: map[string]any{"careDate": string(graphql.CareJustBrowsing)}}
	urgent := visibility.Context{Values: map[string]any{"careDate": string(graphql.CareRightNow)}}

	got, err := reg.Next("SEEKER_CHILD_CARE", "kids", urgent)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if diff := cmp.Diff(Target{Step: "rate", Path: "/enroll/seeker-child-care/rate"}, got); diff != "" {
		t.Fatalf("next mismatch (-want +got):\n%s", diff)
	}

	got, err = reg.Next("SEEKER_CHILD_CARE", "kids", browsing)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Step != "name" {
		t.Fatalf("expected rate and payment to be skipped, got %q", got.Step)
	}

	prev, ok, err := reg.Previous("SEEKER_CHILD_CARE", "name", browsing)
	if err != nil || !ok || prev.Step != "kids" {
		t.Fatalf("Previous = %+v %v %v", prev, ok, err)
	}

	pos, total, err := reg.Progress("SEEKER_CHILD_CARE", "name", browsing)
	if err != nil || pos != 4 || total != 5 {
		t.Fatalf("Progress = %d/%d %v", pos, total, err)
	}
	pos, total, _ = reg.Progress("SEEKER_CHILD_CARE", "name", urgent)
	if pos != 6 || total != 7 {
		t.Fatalf("Progress = %d/%d", pos, total)
	}
}

func TestNextPastLastStepIsExternal(t *testing.T) {
	t.Parallel()

	reg := loadDefault(t)
	got, err := reg.Next("PROVIDER_TUTORING", "profile", visibility.Context{})
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want := Target{Path: "https://www.example.com/provider/tutoring/welcome", External: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("completion mismatch (-want +got):\n%s", diff)
	}

	_, ok, err := reg.Previous("PROVIDER_TUTORING", "zip", visibility.Context{})
	if err != nil || ok {
		t.Fatalf("Previous before first step = %v %v", ok, err)
	}
}

func TestLookupErrors(t *testing.T) {
	t.Parallel()

	reg := loadDefault(t)
	if _, err := reg.Next("NOPE", "zip", visibility.Context{}); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("expected ErrFlowNotFound, got %v", err)
	}
	if _, err := reg.Next("SEEKER_PET_CARE", "kids", visibility.Context{}); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("expected ErrStepNotFound, got %v", err)
	}
	if _, err := reg.BySlug("nope"); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("expected ErrFlowNotFound for slug, got %v", err)
	}
}

func TestPathRoundTrip(t *testing.T) {
	t.Parallel()

	reg := loadDefault(t)
	f, _ := reg.Flow("SEEKER_PET_CARE")
	path := reg.Path(f, "pets")
	if path != "/enroll/seeker-pet-care/pets" {
		t.Fatalf("unexpected path %q", path)
	}

	got, step, err := reg.ParsePath(path)
	if err != nil || got.Name != "SEEKER_PET_CARE" || step != "pets" {
		t.Fatalf("ParsePath = %v %q %v", got, step, err)
	}
	got, step, err = reg.ParsePath("/enroll/seeker-pet-care")
	if err != nil || got.Name != "SEEKER_PET_CARE" || step != "" {
		t.Fatalf("ParsePath flow only = %v %q %v", got, step, err)
	}
	for _, bad := range []string{"/other/seeker-pet-care/pets", "/enroll/seeker-pet-care/kids", "/enroll/unknown/zip"} {
		if _, _, err := reg.ParsePath(bad); err == nil {
			t.Fatalf("ParsePath(%q) expected error", bad)
		}
	}

	custom, err := LoadDefault(WithBasePath("/join/"))
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	start, err := custom.Start("SEEKER_HOUSEKEEPING", visibility.Context{})
	if err != nil || start.Path != "/join/seeker-housekeeping/zip" {
		t.Fatalf("Start = %+v %v", start, err)
	}
}

func TestLoadValidation(t *testing.T) {
	t.Parallel()

	valid := `
flows:
  - name: A
    persona: seeker
    vertical: PET_CARE
    slug: a
    complete: https://example.com
    steps:
      - id: one
        page: p1
      - id: verify
        url: '{verify}/start'
`
	reg, err := Load(fstest.MapFS{"flows.yaml": {Data: []byte(valid)}}, "flows.yaml", WithTarget("verify", "https://verify.example.com"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	next, err := reg.Next("A", "one", visibility.Context{})
	if err != nil || !next.External || next.Path != "https://verify.example.com/start" {
		t.Fatalf("Next into external step = %+v %v", next, err)
	}

	cases := map[string]string{
		"empty":          `flows: []`,
		"duplicate step": strings.Replace(valid, "id: verify", "id: one", 1),
		"no steps":       "flows:\n  - {name: A, persona: seeker, vertical: PET_CARE, slug: a, complete: x, steps: []}",
		"bad persona":    strings.Replace(valid, "persona: seeker", "persona: robot", 1),
		"bad vertical":   strings.Replace(valid, "PET_CARE", "SPACE", 1),
		"bad slug":       strings.Replace(valid, "slug: a", "slug: a/b", 1),
		"bad rule":       strings.Replace(valid, "page: p1", "page: p1\n        when: 'a =='", 1),
		"missing page":   strings.Replace(valid, "page: p1", "title: x", 1),
		"duplicate flow": valid + strings.Replace(strings.TrimPrefix(valid, "\nflows:\n"), "slug: a", "slug: b", 1),
		"reserved step":  strings.Replace(valid, "id: one", "id: back", 1),
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	if _, err := Load(fstest.MapFS{}, "missing.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
