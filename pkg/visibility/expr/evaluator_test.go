package expr

import (
	"testing"

	"github.com/goliatone/go-enrollment/pkg/visibility"
)

type vertical string

func TestEvaluatorRules(t *testing.T) {
	t.Parallel()

	ctx := visibility.Context{
		Values: map[string]any{
			"careDate":          "RIGHT_NOW",
			"vertical":          vertical("CHILD_CARE"),
			"numberOfChildren":  3,
			"hasTransportation": false,
			"petTypes":          []string{"DOG", "CAT"},
			"helpTypes":         []string{},
			"rateMax":           "25",
			"address":           map[string]any{"zip": "02451"},
			"profile.city":      "Waltham",
		},
		Extras: map[string]any{"authenticated": true},
	}

	cases := []struct {
		rule string
		want bool
	}{
		{``, true},
		{`careDate == "RIGHT_NOW"`, true},
		{`careDate == 'RIGHT_NOW'`, true},
		{`careDate != JUST_BROWSING`, true},
		{`vertical == CHILD_CARE`, true},
		{`vertical in ["SENIOR_CARE", "CHILD_CARE"]`, true},
		{`vertical in []`, false},
		{`numberOfChildren >= 2`, true},
		{`numberOfChildren < 2`, false},
		{`rateMax > 20`, true},
		{`hasTransportation`, false},
		{`!hasTransportation`, true},
		{`hasTransportation == false`, true},
		{`petTypes == "CAT"`, true},
		{`petTypes == "BIRD"`, false},
		{`petTypes`, true},
		{`helpTypes`, false},
		{`helpTypes == null`, true},
		{`missing == null`, true},
		{`missing`, false},
		{`address.zip == "02451"`, true},
		{`profile.city == "Waltham"`, true},
		{`extras.authenticated && careDate == RIGHT_NOW`, true},
		{`extras.authenticated == false || (numberOfChildren == 3 && !hasTransportation)`, true},
	}

	eval := New()
	for _, tc := range cases {
		got, err := eval.Eval("subject", tc.rule, ctx)
		if err != nil {
			t.Fatalf("Eval(%q) error: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("Eval(%q) = %v, want %v", tc.rule, got, tc.want)
		}
	}
}

func TestEvaluatorErrors(t *testing.T) {
	t.Parallel()

	eval := New()
	for _, rule := range []string{
		`careDate = "x"`,
		`a & b`,
		`(a || b`,
		`"unterminated`,
		`a ==`,
		`a > "x"`,
		`a in "x"`,
		`a in ["x" "y"]`,
		`== a`,
	} {
		if _, err := eval.Eval("subject", rule, visibility.Context{}); err == nil {
			t.Fatalf("expected error for %q", rule)
		}
		if err := eval.Compile(rule); err == nil {
			t.Fatalf("expected compile error for %q", rule)
		}
	}
}

func TestEvaluatorCachesParsedRules(t *testing.T) {
	t.Parallel()

	eval := New()
	rule := `a == 1`
	for i := 0; i < 3; i++ {
		ok, err := eval.Eval("a", rule, visibility.Context{Values: map[string]any{"a": 1}})
		if err != nil || !ok {
			t.Fatalf("unexpected result %v %v", ok, err)
		}
	}
	if _, ok := eval.cache.Load(rule); !ok {
		t.Fatalf("expected rule to be cached")
	}
}
