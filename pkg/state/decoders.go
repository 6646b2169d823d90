package state

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-enrollment/pkg/graphql"
)

// ErrUnknownAction is returned when no decoder is registered for an action.
var ErrUnknownAction = errors.New("state: unknown action type")

// Decoder builds a typed action from validated form values.
type Decoder func(values map[string]any) (Action, error)

// Decoders maps action types to their decoder.
type Decoders map[ActionType]Decoder

// Decode builds the action t from values.
func (d Decoders) Decode(t ActionType, values map[string]any) (Action, error) {
	decode, ok := d[t]
	if !ok {
		return Action{}, fmt.Errorf("%w: %s", ErrUnknownAction, t)
	}
	action, err := decode(values)
	if err != nil {
		return Action{}, fmt.Errorf("state: decode %s: %w", t, err)
	}
	return action, nil
}

// Types lists the registered action types in sorted order.
func (d Decoders) Types() []ActionType {
	out := make([]ActionType, 0, len(d))
	for t := range d {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var providerDomains = []Domain{DomainProviderCC, DomainProviderSC, DomainProviderPC, DomainProviderTU, DomainProviderHK}

// DefaultDecoders registers a decoder for every form backed action.
func DefaultDecoders() Decoders {
	d := Decoders{}

	for _, domain := range append([]Domain{DomainSeeker}, providerDomains...) {
		domain := domain
		d[Type(domain, VerbSetZipCode)] = func(v map[string]any) (Action, error) {
			zip := stringOf(v, "zipCode")
			if zip == "" {
				return Action{}, errors.New("zipCode is required")
			}
			return SetZipCode(domain, zip, stringOf(v, "city"), stringOf(v, "state")), nil
		}
		d[Type(domain, VerbSetName)] = func(v map[string]any) (Action, error) {
			return SetName(domain, stringOf(v, "firstName"), stringOf(v, "lastName")), nil
		}
		d[Type(domain, VerbSetEmail)] = func(v map[string]any) (Action, error) {
			email := stringOf(v, "email")
			if email == "" {
				return Action{}, errors.New("email is required")
			}
			return SetEmail(domain, email), nil
		}
		d[Type(domain, VerbSetRateRange)] = func(v map[string]any) (Action, error) {
			min, okMin := intOf(v, "rateMin")
			max, okMax := intOf(v, "rateMax")
			if !okMin || !okMax {
				return Action{}, errors.New("rateMin and rateMax are required")
			}
			return SetRateRange(domain, min, max), nil
		}
	}

	d[Type(DomainSeeker, VerbSetVertical)] = func(v map[string]any) (Action, error) {
		vertical := graphql.ParseEnum[graphql.ServiceType](stringOf(v, "vertical"))
		if !vertical.Valid() {
			return Action{}, fmt.Errorf("invalid vertical %q", vertical)
		}
		return SetVertical(vertical), nil
	}
	d[Type(DomainSeeker, VerbSetCareDate)] = func(v map[string]any) (Action, error) {
		date := graphql.ParseEnum[graphql.CareDate](stringOf(v, "careDate"))
		if !date.Valid() {
			return Action{}, fmt.Errorf("invalid care date %q", date)
		}
		return SetCareDate(date), nil
	}
	d[Type(DomainSeeker, VerbSetPaymentType)] = func(v map[string]any) (Action, error) {
		payment := graphql.ParseEnum[graphql.PaymentType](stringOf(v, "paymentType"))
		if !payment.Valid() {
			return Action{}, fmt.Errorf("invalid payment type %q", payment)
		}
		return SetPaymentType(payment), nil
	}
	d[Type(DomainSeeker, VerbSetKids)] = func(v map[string]any) (Action, error) {
		count, _ := intOf(v, "numberOfChildren")
		var groups []graphql.AgeGroup
		for _, raw := range listOf(v, "ageGroups") {
			group := graphql.ParseEnum[graphql.AgeGroup](raw)
			if !group.Valid() {
				return Action{}, fmt.Errorf("invalid age group %q", raw)
			}
			groups = append(groups, group)
		}
		return Action{Type: Type(DomainSeeker, VerbSetKids), Payload: Kids{Count: count, AgeGroups: groups}}, nil
	}
	d[Type(DomainSeeker, VerbSetCareRecipient)] = func(v map[string]any) (Action, error) {
		return Action{Type: Type(DomainSeeker, VerbSetCareRecipient), Payload: CareRecipient{
			Relationship: stringOf(v, "careRecipient"),
			HelpTypes:    listOf(v, "helpTypes"),
		}}, nil
	}
	d[Type(DomainSeeker, VerbSetPetTypes)] = func(v map[string]any) (Action, error) {
		return Action{Type: Type(DomainSeeker, VerbSetPetTypes), Payload: listOf(v, "petTypes")}, nil
	}
	d[Type(DomainSeeker, VerbSetTutoring)] = func(v map[string]any) (Action, error) {
		return Action{Type: Type(DomainSeeker, VerbSetTutoring), Payload: Tutoring{
			Subjects:   listOf(v, "subjects"),
			GradeLevel: stringOf(v, "gradeLevel"),
		}}, nil
	}
	d[Type(DomainSeeker, VerbSetHome)] = func(v map[string]any) (Action, error) {
		bedrooms, _ := intOf(v, "bedrooms")
		bathrooms, _ := intOf(v, "bathrooms")
		return Action{Type: Type(DomainSeeker, VerbSetHome), Payload: Home{
			Bedrooms:  bedrooms,
			Bathrooms: bathrooms,
			Frequency: stringOf(v, "frequency"),
		}}, nil
	}

	for _, domain := range providerDomains {
		domain := domain
		d[Type(domain, VerbSetPhone)] = func(v map[string]any) (Action, error) {
			phone := stringOf(v, "phone")
			if phone == "" {
				return Action{}, errors.New("phone is required")
			}
			return SetPhone(domain, phone), nil
		}
		d[Type(domain, VerbSetDateOfBirth)] = func(v map[string]any) (Action, error) {
			gender := graphql.ParseEnum[graphql.Gender](stringOf(v, "gender"))
			if gender != "" && !gender.Valid() {
				return Action{}, fmt.Errorf("invalid gender %q", gender)
			}
			return Action{Type: Type(domain, VerbSetDateOfBirth), Payload: DateOfBirth{
				Date:   stringOf(v, "dateOfBirth"),
				Gender: gender,
			}}, nil
		}
		d[Type(domain, VerbSetAvailability)] = func(v map[string]any) (Action, error) {
			var days []graphql.DayOfWeek
			for _, raw := range listOf(v, "availability") {
				day := graphql.ParseEnum[graphql.DayOfWeek](raw)
				if !day.Valid() {
					return Action{}, fmt.Errorf("invalid day %q", raw)
				}
				days = append(days, day)
			}
			return Action{Type: Type(domain, VerbSetAvailability), Payload: days}, nil
		}
		d[Type(domain, VerbSetProfile)] = func(v map[string]any) (Action, error) {
			years, _ := intOf(v, "yearsOfExperience")
			return Action{Type: Type(domain, VerbSetProfile), Payload: Profile{
				YearsOfExperience: years,
				Bio:               stringOf(v, "bio"),
				EducationLevel:    stringOf(v, "educationLevel"),
			}}, nil
		}
	}

	d[Type(DomainProviderCC, VerbSetDetails)] = func(v map[string]any) (Action, error) {
		kids, _ := intOf(v, "numberOfKidsMax")
		return Action{Type: Type(DomainProviderCC, VerbSetDetails), Payload: CCDetails{
			AgeGroups:       listOf(v, "ageGroups"),
			NumberOfKidsMax: kids,
			CPRTrained:      boolOf(v, "cprTrained"),
		}}, nil
	}
	d[Type(DomainProviderSC, VerbSetDetails)] = func(v map[string]any) (Action, error) {
		return Action{Type: Type(DomainProviderSC, VerbSetDetails), Payload: SCDetails{
			HelpTypes:         listOf(v, "helpTypes"),
			HasTransportation: boolOf(v, "hasTransportation"),
		}}, nil
	}
	d[Type(DomainProviderPC, VerbSetDetails)] = func(v map[string]any) (Action, error) {
		return Action{Type: Type(DomainProviderPC, VerbSetDetails), Payload: PCDetails{
			ServiceTypes: listOf(v, "serviceTypes"),
			PetTypes:     listOf(v, "petTypes"),
		}}, nil
	}
	d[Type(DomainProviderTU, VerbSetDetails)] = func(v map[string]any) (Action, error) {
		return Action{Type: Type(DomainProviderTU, VerbSetDetails), Payload: TUDetails{
			Subjects:       listOf(v, "subjects"),
			GradeLevels:    listOf(v, "gradeLevels"),
			OnlineTutoring: boolOf(v, "onlineTutoring"),
		}}, nil
	}
	d[Type(DomainProviderHK, VerbSetDetails)] = func(v map[string]any) (Action, error) {
		return Action{Type: Type(DomainProviderHK, VerbSetDetails), Payload: HKDetails{
			Services:       listOf(v, "services"),
			BringsSupplies: boolOf(v, "bringsSupplies"),
		}}, nil
	}

	return d
}

func stringOf(values map[string]any, key string) string {
	switch v := values[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func intOf(values map[string]any, key string) (int, bool) {
	switch v := values[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

func boolOf(values map[string]any, key string) bool {
	switch v := values[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b || v == "on"
	}
	return false
}

func listOf(values map[string]any, key string) []string {
	switch v := values[key].(type) {
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}
		}
		return []string{strings.TrimSpace(v)}
	}
	return []string{}
}
