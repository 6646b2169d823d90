package state

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-enrollment/pkg/graphql"
)

func TestInitialStateDefaults(t *testing.T) {
	t.Parallel()

	s := InitialState()
	if s.Seeker.PaymentType != graphql.PaymentCashOrCheck {
		t.Fatalf("expected cash or check default, got %q", s.Seeker.PaymentType)
	}
	got := map[Domain]RateRange{}
	for _, domain := range providerDomains {
		c, _ := s.Common(domain)
		got[domain] = RateRange{Min: c.RateMin, Max: c.RateMax}
	}
	want := map[Domain]RateRange{
		DomainProviderCC: {15, 25},
		DomainProviderSC: {16, 28},
		DomainProviderPC: {14, 22},
		DomainProviderTU: {20, 40},
		DomainProviderHK: {17, 27},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("default rates mismatch (-want +got):\n%s", diff)
	}
}

func TestActionTypeSplit(t *testing.T) {
	t.Parallel()

	domain, verb := Type(DomainProviderCC, VerbSetRateRange).Split()
	if domain != DomainProviderCC || verb != VerbSetRateRange {
		t.Fatalf("unexpected split %q %q", domain, verb)
	}
	if string(Type(DomainSeeker, VerbSetZipCode)) != "seeker/SET_ZIP_CODE" {
		t.Fatalf("unexpected action type")
	}
	if domain, _ := ActionType("RESET").Split(); domain != "" {
		t.Fatalf("expected empty domain for bare verb")
	}
}

func TestSeekerReducer(t *testing.T) {
	t.Parallel()

	s := InitialState()
	s = Root(s, SetVertical(graphql.ServiceTutoring))
	if s.Seeker.RateMin != 20 || s.Seeker.RateMax != 40 {
		t.Fatalf("expected tutoring default rates, got %d-%d", s.Seeker.RateMin, s.Seeker.RateMax)
	}

	s = Root(s, SetZipCode(DomainSeeker, "02451-1234", "Waltham", "MA"))
	s = Root(s, SetRateRange(DomainSeeker, 30, 18))
	s = Root(s, SetCareDate(graphql.CareWithinAWeek))
	s = Root(s, Action{Type: Type(DomainSeeker, VerbSetTutoring), Payload: Tutoring{Subjects: []string{"Math"}, GradeLevel: "HIGH_SCHOOL"}})

	want := SeekerState{
		ZipCode:     "02451",
		City:        "Waltham",
		State:       "MA",
		Vertical:    graphql.ServiceTutoring,
		CareDate:    graphql.CareWithinAWeek,
		RateMin:     18,
		RateMax:     30,
		PaymentType: graphql.PaymentCashOrCheck,
		Subjects:    []string{"Math"},
		GradeLevel:  "HIGH_SCHOOL",
	}
	if diff := cmp.Diff(want, s.Seeker); diff != "" {
		t.Fatalf("seeker mismatch (-want +got):\n%s", diff)
	}
}

func TestReducersIgnoreInvalidInput(t *testing.T) {
	t.Parallel()

	base := InitialState()
	for _, action := range []Action{
		SetZipCode(DomainSeeker, "123", "", ""),
		SetVertical("SPACE_TRAVEL"),
		SetCareDate("TOMORROW"),
		SetPaymentType("BITCOIN"),
		SetPhone(DomainProviderCC, "555-1234"),
		{Type: Type(DomainSeeker, VerbSetName), Payload: "not a name payload"},
		{Type: Type(DomainSeeker, "UNKNOWN")},
		{Type: Type(DomainProviderSC, VerbSetDetails), Payload: CCDetails{}},
		{Type: "nowhere/SET_ZIP_CODE", Payload: ZipCode{Zip: "02451"}},
	} {
		got := Root(base, action)
		if diff := cmp.Diff(base, got); diff != "" {
			t.Fatalf("%s changed state (-want +got):\n%s", action.Type, diff)
		}
	}
}

func TestProviderReducers(t *testing.T) {
	t.Parallel()

	s := InitialState()
	s = Root(s, SetPhone(DomainProviderCC, "1 (617) 555-1234"))
	s = Root(s, Action{Type: Type(DomainProviderCC, VerbSetDateOfBirth), Payload: DateOfBirth{Date: "03/04/1990", Gender: graphql.GenderFemale}})
	s = Root(s, Action{Type: Type(DomainProviderCC, VerbSetAvailability), Payload: []graphql.DayOfWeek{graphql.Monday, graphql.Monday, "FUNDAY", graphql.Friday}})
	s = Root(s, Action{Type: Type(DomainProviderCC, VerbSetDetails), Payload: CCDetails{AgeGroups: []string{"TODDLER"}, NumberOfKidsMax: 3, CPRTrained: true}})
	s = Root(s, SetRateRange(DomainProviderCC, 22, 18))

	cc := s.ProviderCC
	if cc.Phone != "6175551234" || cc.DateOfBirth != "1990-03-04" || cc.Gender != graphql.GenderFemale {
		t.Fatalf("unexpected provider common: %+v", cc.ProviderCommon)
	}
	if diff := cmp.Diff([]graphql.DayOfWeek{graphql.Monday, graphql.Friday}, cc.Availability); diff != "" {
		t.Fatalf("availability mismatch (-want +got):\n%s", diff)
	}
	if cc.RateMin != 18 || cc.RateMax != 22 {
		t.Fatalf("expected swapped rates, got %d-%d", cc.RateMin, cc.RateMax)
	}
	if !cc.CPRTrained || cc.NumberOfKidsMax != 3 {
		t.Fatalf("details not applied: %+v", cc)
	}
	if s.ProviderSC.Phone != "" {
		t.Fatalf("action leaked into another provider domain")
	}
}

func TestReducersDoNotAliasSlices(t *testing.T) {
	t.Parallel()

	pets := []string{"DOG"}
	before := Root(InitialState(), Action{Type: Type(DomainSeeker, VerbSetPetTypes), Payload: pets})
	pets[0] = "CAT"
	if before.Seeker.PetTypes[0] != "DOG" {
		t.Fatalf("state aliased payload slice")
	}

	after := Root(before, Action{Type: Type(DomainSeeker, VerbSetNearbyCaregivers), Payload: 12})
	after.Seeker.PetTypes[0] = "FISH"
	if before.Seeker.PetTypes[0] != "DOG" {
		t.Fatalf("new state aliased previous state's slice")
	}
}

func TestFlowReducer(t *testing.T) {
	t.Parallel()

	s := Root(InitialState(), StartFlow("SEEKER_CHILD_CARE"))
	s = Root(s, StepCompleted("zip"))
	s = Root(s, StepCompleted("zip"))
	s = Root(s, StepCompleted("care-date"))
	s = Root(s, SetAuth("m-1", "tok"))

	if diff := cmp.Diff([]string{"zip", "care-date"}, s.Flow.Visited); diff != "" {
		t.Fatalf("visited mismatch (-want +got):\n%s", diff)
	}
	if !s.Flow.Authenticated() || !s.Flow.HasVisited("zip") {
		t.Fatalf("unexpected flow state %+v", s.Flow)
	}

	restarted := Root(s, StartFlow("SEEKER_CHILD_CARE"))
	if len(restarted.Flow.Visited) != 2 {
		t.Fatalf("restarting the active flow should keep progress")
	}

	if !s.Flow.Active("SEEKER_CHILD_CARE") || s.Flow.Active("SEEKER_PET_CARE") || s.Flow.Active("") {
		t.Fatalf("Active mismatch for %+v", s.Flow)
	}

	s = Root(s, CompleteFlow())
	if s.Flow.Active("SEEKER_CHILD_CARE") {
		t.Fatalf("a completed flow is not active")
	}
	s = Root(s, StartFlow("PROVIDER_PET_CARE"))
	if s.Flow.Name != "PROVIDER_PET_CARE" || len(s.Flow.Visited) != 0 || s.Flow.Completed {
		t.Fatalf("expected fresh flow, got %+v", s.Flow)
	}
	if s.Flow.AuthToken != "tok" {
		t.Fatalf("auth should survive flow changes")
	}

	if diff := cmp.Diff(InitialState(), Root(s, Reset())); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
}

func TestStore(t *testing.T) {
	t.Parallel()

	var seen []ActionType
	store := NewStore(InitialState(), nil, WithMiddleware(func(_ AppState, action Action) {
		seen = append(seen, action.Type)
	}))

	var notified []AppState
	unsubscribe := store.Subscribe(func(s AppState) { notified = append(notified, s) })

	next := store.Dispatch(SetVertical(graphql.ServicePetCare), SetNearbyCaregivers(7))
	if next.Seeker.NearbyCaregivers != 7 || store.State().Seeker.Vertical != graphql.ServicePetCare {
		t.Fatalf("dispatch not applied: %+v", next.Seeker)
	}
	if len(notified) != 1 || notified[0].Seeker.NearbyCaregivers != 7 {
		t.Fatalf("expected one notification with new state, got %d", len(notified))
	}
	if diff := cmp.Diff([]ActionType{Type(DomainSeeker, VerbSetVertical), Type(DomainSeeker, VerbSetNearbyCaregivers)}, seen); diff != "" {
		t.Fatalf("middleware mismatch (-want +got):\n%s", diff)
	}

	unsubscribe()
	store.Dispatch(SetNearbyCaregivers(8))
	if len(notified) != 1 {
		t.Fatalf("unsubscribed listener still notified")
	}
}

func TestStoreConcurrentDispatch(t *testing.T) {
	t.Parallel()

	store := NewStore(InitialState(), Root)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Dispatch(StepCompleted(string(rune('a' + i%26))))
		}(i)
	}
	wg.Wait()
	if got := len(store.State().Flow.Visited); got != 26 {
		t.Fatalf("expected 26 distinct steps, got %d", got)
	}
}

func TestMarshalRoundTripKeepsDefaults(t *testing.T) {
	t.Parallel()

	s := Root(InitialState(), SetZipCode(DomainProviderHK, "02451", "Waltham", "MA"))
	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	partial, err := Unmarshal([]byte(`{"seeker":{"zipCode":"02451","rateMin":0,"rateMax":0,"paymentType":"PAYROLL_SERVICE"}}`))
	if err != nil {
		t.Fatalf("Unmarshal partial: %v", err)
	}
	if partial.ProviderTU.RateMax != 40 || partial.Seeker.PaymentType != graphql.PaymentPayrollService {
		t.Fatalf("partial state lost defaults: %+v", partial)
	}

	if _, err := Unmarshal([]byte(`{`)); err == nil {
		t.Fatalf("expected error for malformed data")
	}
}

func TestDecoders(t *testing.T) {
	t.Parallel()

	d := DefaultDecoders()

	action, err := d.Decode(Type(DomainSeeker, VerbSetRateRange), map[string]any{"rateMin": 20, "rateMax": float64(30)})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(RateRange{Min: 20, Max: 30}, action.Payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	action, err = d.Decode(Type(DomainSeeker, VerbSetPaymentType), map[string]any{"paymentType": "payroll service"})
	if err != nil || action.Payload != graphql.PaymentPayrollService {
		t.Fatalf("unexpected payment decode %v %v", action, err)
	}

	action, err = d.Decode(Type(DomainProviderTU, VerbSetDetails), map[string]any{
		"subjects": []string{"Math", " "}, "gradeLevels": []any{"K_5"}, "onlineTutoring": true,
	})
	if err != nil {
		t.Fatalf("Decode details: %v", err)
	}
	want := TUDetails{Subjects: []string{"Math"}, GradeLevels: []string{"K_5"}, OnlineTutoring: true}
	if diff := cmp.Diff(want, action.Payload); diff != "" {
		t.Fatalf("details mismatch (-want +got):\n%s", diff)
	}

	if _, err := d.Decode("seeker/SET_SPACESHIP", nil); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := d.Decode(Type(DomainSeeker, VerbSetCareDate), map[string]any{"careDate": "someday"}); err == nil {
		t.Fatalf("expected invalid enum error")
	}
	if _, err := d.Decode(Type(DomainProviderPC, VerbSetAvailability), map[string]any{"availability": []string{"MONDAY", "FUNDAY"}}); err == nil {
		t.Fatalf("expected invalid day error")
	}
	if len(d.Types()) == 0 || d.Types()[0] > d.Types()[len(d.Types())-1] {
		t.Fatalf("types should be sorted")
	}
}

func TestValues(t *testing.T) {
	t.Parallel()

	s := Root(InitialState(), Action{Type: Type(DomainSeeker, VerbSetKids), Payload: Kids{Count: 1, AgeGroups: []graphql.AgeGroup{graphql.AgeToddler, graphql.AgeTeen}}})
	s = Root(s, Action{Type: Type(DomainProviderSC, VerbSetDetails), Payload: SCDetails{HelpTypes: []string{"MEALS"}, HasTransportation: true}})

	seeker := Values(s, DomainSeeker)
	if seeker["numberOfChildren"] != 2 {
		t.Fatalf("expected child count to cover age groups, got %v", seeker["numberOfChildren"])
	}
	if diff := cmp.Diff([]string{"TODDLER", "TEEN"}, seeker["ageGroups"]); diff != "" {
		t.Fatalf("age groups mismatch (-want +got):\n%s", diff)
	}
	if seeker["paymentType"] != "CASH_OR_CHECK" {
		t.Fatalf("unexpected payment type %v", seeker["paymentType"])
	}

	sc := Values(s, DomainProviderSC)
	if sc["hasTransportation"] != true || sc["vertical"] != "SENIOR_CARE" || sc["rateMin"] != 16 {
		t.Fatalf("unexpected provider values %v", sc)
	}
	if len(Values(s, "unknown")) != 0 {
		t.Fatalf("expected empty map for unknown domain")
	}
}
