package fields

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-enrollment/pkg/model"
)

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "(617) 555-1234", want: "6175551234"},
		{in: "1-617-555-1234", want: "6175551234"},
		{in: "+1 617 555 1234", want: "6175551234"},
		{in: "617.555.1234", want: "6175551234"},
		{in: "555-1234", wantErr: true},
		{in: "(017) 555-1234", wantErr: true},
		{in: "(617) 155-1234", wantErr: true},
		{in: "26175551234", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidPhone) {
				t.Fatalf("NormalizePhone(%q) expected ErrInvalidPhone, got %q %v", tc.in, got, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}

	if got := FormatPhone("6175551234"); got != "(617) 555-1234" {
		t.Fatalf("FormatPhone = %q", got)
	}
	if got := FormatPhone("123"); got != "123" {
		t.Fatalf("FormatPhone should pass through short input, got %q", got)
	}
}

func TestDates(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"03/04/1990", "3/4/1990", "1990-03-04"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if FormatDate(got) != "03/04/1990" {
			t.Fatalf("FormatDate(ParseDate(%q)) = %q", in, FormatDate(got))
		}
	}
	if _, err := ParseDate("13/45/1990"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	if err := ValidateAge(time.Date(2006, time.June, 15, 0, 0, 0, 0, time.UTC), now, 18); err != nil {
		t.Fatalf("18th birthday today should pass: %v", err)
	}
	if err := ValidateAge(time.Date(2006, time.June, 16, 0, 0, 0, 0, time.UTC), now, 18); !errors.Is(err, ErrTooYoung) {
		t.Fatalf("expected ErrTooYoung, got %v", err)
	}
	if err := ValidateAge(now.AddDate(0, 0, 1), now, 0); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("future dates should be invalid, got %v", err)
	}
	if Age(time.Date(2000, time.February, 29, 0, 0, 0, 0, time.UTC), time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)) != 23 {
		t.Fatalf("unexpected leap day age")
	}
}

func TestNormalizeZip(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"02451": "02451", " 02451-1234 ": "02451", "024511234": "02451"} {
		got, err := NormalizeZip(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeZip(%q) = %q, %v", in, got, err)
		}
	}
	for _, in := range []string{"2451", "02451-12", "abcde", "024512"} {
		if _, err := NormalizeZip(in); !errors.Is(err, ErrInvalidZip) {
			t.Fatalf("NormalizeZip(%q) expected error", in)
		}
	}
}

func TestNormalizeEmailAndNames(t *testing.T) {
	t.Parallel()

	if got, err := NormalizeEmail(" Jane@Example.COM "); err != nil || got != "jane@example.com" {
		t.Fatalf("NormalizeEmail = %q, %v", got, err)
	}
	for _, in := range []string{"jane", "jane@localhost", "Jane <jane@example.com>", "jane@example."} {
		if _, err := NormalizeEmail(in); err == nil {
			t.Fatalf("NormalizeEmail(%q) expected error", in)
		}
	}

	if got, err := CleanName("  O'Brien  <b>Smith</b> "); err != nil || got != "O'Brien Smith" {
		t.Fatalf("CleanName = %q, %v", got, err)
	}
	if _, err := CleanName("<script>alert(1)</script>"); err == nil {
		t.Fatalf("expected markup-only name to be rejected")
	}
	if got := CleanText("I <em>love</em> kids & dogs", 0); got != "I love kids & dogs" {
		t.Fatalf("CleanText = %q", got)
	}
	if got := CleanText("abcdef", 3); got != "abc" {
		t.Fatalf("CleanText truncation = %q", got)
	}
}

func TestParseDollars(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]int{"25": 25, "$25": 25, "1,200": 1200, "25.00": 25} {
		got, err := ParseDollars(in)
		if err != nil || got != want {
			t.Fatalf("ParseDollars(%q) = %d, %v", in, got, err)
		}
	}
	if _, err := ParseDollars("25.50"); err == nil {
		t.Fatalf("expected cents to be rejected")
	}
}

func TestValidate(t *testing.T) {
	restore := Now
	Now = func() time.Time { return time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { Now = restore })

	rateField := model.Field{
		Name: "rateMin", Type: model.FieldTypeInteger, Format: FormatKindCurrency, Required: true,
		Validations: []model.ValidationRule{
			{Kind: model.ValidationRuleMin, Params: map[string]string{"value": "10"}},
			{Kind: model.ValidationRuleMax, Params: map[string]string{"value": "100"}},
		},
	}
	dobField := model.Field{Name: "dateOfBirth", Type: model.FieldTypeString, Format: FormatKindDate, Required: true, Metadata: map[string]string{"minAge": "18"}}
	careDate := model.Field{Name: "careDate", Type: model.FieldTypeString, Required: true, Options: []model.Option{{Value: "RIGHT_NOW"}, {Value: "JUST_BROWSING"}}}
	petTypes := model.Field{
		Name: "petTypes", Type: model.FieldTypeArray, Required: true,
		Items:       &model.Field{Type: model.FieldTypeString, Options: []model.Option{{Value: "DOG"}, {Value: "CAT"}}},
		Validations: []model.ValidationRule{{Kind: model.ValidationRuleMaxItems, Params: map[string]string{"value": "2"}}},
	}
	bio := model.Field{Name: "bio", Type: model.FieldTypeString, Format: FormatKindTextarea, Validations: []model.ValidationRule{
		{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "5"}},
	}}
	code := model.Field{Name: "code", Type: model.FieldTypeString, Validations: []model.ValidationRule{
		{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": `^[A-Z]{3}$`}},
	}}
	terms := model.Field{Name: "terms", Type: model.FieldTypeBoolean, Required: true}

	cases := []struct {
		name     string
		field    model.Field
		raw      []string
		want     any
		wantMsgs bool
	}{
		{name: "currency", field: rateField, raw: []string{"$15"}, want: 15},
		{name: "below min", field: rateField, raw: []string{"5"}, wantMsgs: true},
		{name: "not a number", field: rateField, raw: []string{"abc"}, wantMsgs: true},
		{name: "required missing", field: rateField, raw: nil, wantMsgs: true},
		{name: "adult", field: dobField, raw: []string{"06/15/2006"}, want: "2006-06-15"},
		{name: "minor", field: dobField, raw: []string{"06/16/2006"}, wantMsgs: true},
		{name: "enum", field: careDate, raw: []string{"RIGHT_NOW"}, want: "RIGHT_NOW"},
		{name: "enum unknown", field: careDate, raw: []string{"TOMORROW"}, wantMsgs: true},
		{name: "list", field: petTypes, raw: []string{"DOG", "CAT", "DOG"}, want: []string{"DOG", "CAT"}},
		{name: "list comma", field: petTypes, raw: []string{"DOG,CAT"}, want: []string{"DOG", "CAT"}},
		{name: "list unknown", field: petTypes, raw: []string{"FISH"}, wantMsgs: true},
		{name: "list empty", field: petTypes, raw: nil, wantMsgs: true},
		{name: "text sanitised", field: bio, raw: []string{"<b>Hello</b> there"}, want: "Hello there"},
		{name: "text short", field: bio, raw: []string{"hey"}, wantMsgs: true},
		{name: "optional empty", field: bio, raw: []string{""}, want: nil},
		{name: "pattern", field: code, raw: []string{"abc"}, wantMsgs: true},
		{name: "checkbox", field: terms, raw: []string{"on"}, want: true},
		{name: "checkbox unchecked", field: terms, raw: nil, want: false, wantMsgs: true},
	}

	for _, tc := range cases {
		got, msgs := Validate(tc.field, tc.raw)
		if tc.wantMsgs != (len(msgs) > 0) {
			t.Fatalf("%s: messages = %v, wantMsgs %v", tc.name, msgs, tc.wantMsgs)
		}
		if tc.wantMsgs && tc.want == nil {
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: value mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	phone := model.Field{Format: FormatKindPhone}
	date := model.Field{Format: FormatKindDate}
	list := model.Field{Type: model.FieldTypeArray}
	type day string

	cases := []struct {
		field model.Field
		value any
		want  string
	}{
		{phone, "6175551234", "(617) 555-1234"},
		{date, "1990-03-04", "03/04/1990"},
		{date, time.Date(1990, 3, 4, 0, 0, 0, 0, time.UTC), "03/04/1990"},
		{model.Field{Format: FormatKindPassword}, "secret", ""},
		{model.Field{}, 25, "25"},
		{model.Field{}, 0, ""},
		{model.Field{Required: true}, 0, "0"},
		{list, []string{"DOG", "CAT"}, "DOG,CAT"},
		{list, []day{"MONDAY", "FRIDAY"}, "MONDAY,FRIDAY"},
		{model.Field{}, nil, ""},
	}
	for _, tc := range cases {
		if got := Display(tc.field, tc.value); got != tc.want {
			t.Fatalf("Display(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}

	if !Selected([]day{"MONDAY"}, "MONDAY") || Selected([]string{"A"}, "B") || !Selected("X", "X") {
		t.Fatalf("Selected returned unexpected result")
	}
}
