package pages

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-enrollment/pkg/flow"
	"github.com/goliatone/go-enrollment/pkg/graphql"
	"github.com/goliatone/go-enrollment/pkg/state"
)

// NearbyRadius is the search radius, in miles, of the caregiver count shown
// to seekers.
const NearbyRadius = 10

// Effect names used by the page catalog.
const (
	EffectZipLookup                = "zipLookup"
	EffectNearbyCount              = "nearbyCount"
	EffectSeekerCreate             = "seekerCreate"
	EffectProviderCreate           = "providerCreate"
	EffectProviderNameUpdate       = "providerNameUpdate"
	EffectProviderPhoneUpdate      = "providerPhoneUpdate"
	EffectProviderJobInterest      = "providerJobInterestUpdate"
	EffectProviderAttributesUpdate = "providerAttributesUpdate"
)

// EffectContext is what an effect sees. State already includes the page
// action, Values holds the validated submission (including inputs such as
// passwords that never reach state).
type EffectContext struct {
	Exec   graphql.Executor
	State  state.AppState
	Domain state.Domain
	Flow   *flow.Flow
	Values map[string]any
	Logger logrus.FieldLogger
}

// EffectResult lists follow-up actions to dispatch and an optional redirect
// replacing the next step.
type EffectResult struct {
	Actions  []state.Action
	Redirect string
}

// Effect is the request-layer side effect of a page.
type Effect func(ctx context.Context, ec EffectContext) (EffectResult, error)

// Effects maps effect names to implementations.
type Effects map[string]Effect

// Names lists the registered effects in sorted order.
func (e Effects) Names() []string {
	out := make([]string, 0, len(e))
	for name := range e {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefaultEffects registers every effect the page catalog references.
func DefaultEffects() Effects {
	return Effects{
		EffectZipLookup:                zipLookup,
		EffectNearbyCount:              nearbyCount,
		EffectSeekerCreate:             seekerCreate,
		EffectProviderCreate:           providerCreate,
		EffectProviderNameUpdate:       providerNameUpdate,
		EffectProviderPhoneUpdate:      providerPhoneUpdate,
		EffectProviderJobInterest:      providerJobInterestUpdate,
		EffectProviderAttributesUpdate: providerAttributesUpdate,
	}
}

func zipLookup(ctx context.Context, ec EffectContext) (EffectResult, error) {
	zip := stringValue(state.Values(ec.State, ec.Domain)["zipCode"])
	if zip == "" {
		return EffectResult{}, nil
	}
	details, err := graphql.Query[graphql.ZipcodeDetails](ctx, ec.Exec, graphql.OpZipcodeDetails, map[string]any{"zipcode": zip})
	if err != nil {
		return EffectResult{}, err
	}
	if details.City == "" {
		return EffectResult{}, nil
	}
	return EffectResult{Actions: []state.Action{
		state.SetZipCode(ec.Domain, zip, details.City, details.State),
	}}, nil
}

func nearbyCount(ctx context.Context, ec EffectContext) (EffectResult, error) {
	seeker := ec.State.Seeker
	if seeker.ZipCode == "" || !seeker.Vertical.Valid() {
		return EffectResult{}, nil
	}
	nearby, err := graphql.Query[graphql.NearbyCaregivers](ctx, ec.Exec, graphql.OpNearbyCaregiversCount, map[string]any{
		"zipcode":     seeker.ZipCode,
		"serviceType": seeker.Vertical,
		"radius":      NearbyRadius,
	})
	if err != nil {
		return EffectResult{}, err
	}
	return EffectResult{Actions: []state.Action{state.SetNearbyCaregivers(nearby.Count)}}, nil
}

// seekerCreate creates the account and then posts the seeker's first job.
// The job is best effort: a seeker who is just browsing gets none, and a
// failure only costs the job.
func seekerCreate(ctx context.Context, ec EffectContext) (EffectResult, error) {
	seeker := ec.State.Seeker
	created, err := mutateUnion(ctx, ec.Exec, graphql.OpSeekerCreate, graphql.SeekerCreateInput{
		Email:       seeker.Email,
		Password:    stringValue(ec.Values["password"]),
		FirstName:   seeker.FirstName,
		LastName:    seeker.LastName,
		Zipcode:     seeker.ZipCode,
		ServiceType: seeker.Vertical,
	})
	if err != nil {
		return EffectResult{}, err
	}

	result := EffectResult{Actions: []state.Action{
		state.SetMember(state.DomainSeeker, created.MemberID),
		state.SetAuth(created.MemberID, created.AuthToken),
	}}

	if seeker.CareDate == graphql.CareJustBrowsing || seeker.CareDate == "" {
		return result, nil
	}
	authed := graphql.WithAuthToken(ctx, created.AuthToken)
	job, err := mutateUnion(authed, ec.Exec, graphql.OpSeekerJobCreate, graphql.SeekerJobCreateInput{
		ServiceType: seeker.Vertical,
		Zipcode:     seeker.ZipCode,
		StartDate:   seeker.CareDate,
		RateMin:     seeker.RateMin,
		RateMax:     seeker.RateMax,
		PaymentType: seeker.PaymentType,
		Details:     seekerJobDetails(seeker),
	})
	if err != nil {
		ec.logger().WithError(err).WithField("operation", graphql.OpSeekerJobCreate).Warn("seeker job not created")
		return result, nil
	}
	result.Actions = append(result.Actions, state.SetJob(job.JobID))
	return result, nil
}

func seekerJobDetails(s state.SeekerState) []string {
	var details []string
	for _, kid := range s.Kids {
		details = append(details, string(kid.AgeGroup))
	}
	details = append(details, s.HelpTypes...)
	details = append(details, s.PetTypes...)
	details = append(details, s.Subjects...)
	if s.Frequency != "" {
		details = append(details, s.Frequency)
	}
	return details
}

func providerCreate(ctx context.Context, ec EffectContext) (EffectResult, error) {
	common, ok := ec.State.Common(ec.Domain)
	if !ok {
		return EffectResult{}, fmt.Errorf("pages: %s is not a provider domain", ec.Domain)
	}
	created, err := mutateUnion(ctx, ec.Exec, graphql.OpProviderCreate, graphql.ProviderCreateInput{
		Email:       common.Email,
		Password:    stringValue(ec.Values["password"]),
		Zipcode:     common.ZipCode,
		ServiceType: ec.vertical(),
	})
	if err != nil {
		return EffectResult{}, err
	}
	return EffectResult{Actions: []state.Action{
		state.SetMember(ec.Domain, created.MemberID),
		state.SetAuth(created.MemberID, created.AuthToken),
	}}, nil
}

func providerNameUpdate(ctx context.Context, ec EffectContext) (EffectResult, error) {
	common, ok := ec.State.Common(ec.Domain)
	if !ok {
		return EffectResult{}, fmt.Errorf("pages: %s is not a provider domain", ec.Domain)
	}
	_, err := mutateUnion(ctx, ec.Exec, graphql.OpProviderNameUpdate, graphql.ProviderNameUpdateInput{
		FirstName:   common.FirstName,
		LastName:    common.LastName,
		DateOfBirth: common.DateOfBirth,
		Gender:      common.Gender,
	})
	return EffectResult{}, err
}

func providerPhoneUpdate(ctx context.Context, ec EffectContext) (EffectResult, error) {
	common, ok := ec.State.Common(ec.Domain)
	if !ok {
		return EffectResult{}, fmt.Errorf("pages: %s is not a provider domain", ec.Domain)
	}
	_, err := mutateUnion(ctx, ec.Exec, graphql.OpProviderPhoneUpdate, graphql.ProviderPhoneUpdateInput{
		PhoneNumber: common.Phone,
	})
	return EffectResult{}, err
}

func providerJobInterestUpdate(ctx context.Context, ec EffectContext) (EffectResult, error) {
	common, ok := ec.State.Common(ec.Domain)
	if !ok {
		return EffectResult{}, fmt.Errorf("pages: %s is not a provider domain", ec.Domain)
	}
	_, err := mutateUnion(ctx, ec.Exec, graphql.OpProviderJobInterestUpdate, graphql.ProviderJobInterestUpdateInput{
		ServiceType:  ec.vertical(),
		Availability: common.Availability,
		Preferences:  providerQualities(ec.State, ec.Domain),
	})
	return EffectResult{}, err
}

// providerAttributesUpdate saves the vertical specific profile and then the
// attributes shared by every vertical.
func providerAttributesUpdate(ctx context.Context, ec EffectContext) (EffectResult, error) {
	common, ok := ec.State.Common(ec.Domain)
	if !ok {
		return EffectResult{}, fmt.Errorf("pages: %s is not a provider domain", ec.Domain)
	}
	_, err := mutateUnion(ctx, ec.Exec, graphql.OpCaregiverAttributesUpdate, graphql.CaregiverAttributesUpdateInput{
		ServiceType:       ec.vertical(),
		RateMin:           common.RateMin,
		RateMax:           common.RateMax,
		YearsOfExperience: common.YearsOfExperience,
		Bio:               common.Bio,
		Qualities:         providerQualities(ec.State, ec.Domain),
	})
	if err != nil {
		return EffectResult{}, err
	}

	_, err = mutateUnion(ctx, ec.Exec, graphql.OpUniversalProviderAttributesUpdate, graphql.UniversalProviderAttributesUpdateInput{
		EducationLevel:    common.EducationLevel,
		HasTransportation: ec.Domain == state.DomainProviderSC && ec.State.ProviderSC.HasTransportation,
	})
	if err != nil {
		return EffectResult{}, err
	}
	return EffectResult{Actions: []state.Action{state.SetVerified(ec.Domain, true)}}, nil
}

// providerQualities flattens the vertical specific details into the tags the
// profile mutations accept.
func providerQualities(st state.AppState, domain state.Domain) []string {
	var out []string
	switch domain {
	case state.DomainProviderCC:
		out = append(out, st.ProviderCC.AgeGroups...)
		if st.ProviderCC.CPRTrained {
			out = append(out, "CPR_TRAINED")
		}
	case state.DomainProviderSC:
		out = append(out, st.ProviderSC.HelpTypes...)
	case state.DomainProviderPC:
		out = append(out, st.ProviderPC.ServiceTypes...)
		out = append(out, st.ProviderPC.PetTypes...)
	case state.DomainProviderTU:
		out = append(out, st.ProviderTU.Subjects...)
		out = append(out, st.ProviderTU.GradeLevels...)
		if st.ProviderTU.OnlineTutoring {
			out = append(out, "ONLINE")
		}
	case state.DomainProviderHK:
		out = append(out, st.ProviderHK.Services...)
		if st.ProviderHK.BringsSupplies {
			out = append(out, "BRINGS_SUPPLIES")
		}
	}
	return out
}

// mutateUnion runs a mutation and turns the error branch of its union payload
// into an error.
func mutateUnion(ctx context.Context, exec graphql.Executor, op string, input any) (graphql.MutationResult, error) {
	result, err := graphql.Mutate[graphql.MutationResult](ctx, exec, op, graphql.Input(input))
	if err != nil {
		return graphql.MutationResult{}, err
	}
	if err := result.Err(); err != nil {
		return graphql.MutationResult{}, err
	}
	return result, nil
}

func (ec EffectContext) vertical() graphql.ServiceType {
	if ec.Flow != nil {
		return ec.Flow.Vertical
	}
	return ec.State.Seeker.Vertical
}

func (ec EffectContext) logger() logrus.FieldLogger {
	if ec.Logger != nil {
		return ec.Logger
	}
	return logrus.StandardLogger()
}

// errorPayload extracts field keyed messages from request-layer errors.
func errorPayload(err error) map[string][]string {
	var inputErrs graphql.InputErrors
	if errors.As(err, &inputErrs) {
		return inputErrs.Payload()
	}
	var gqlErrs graphql.Errors
	if errors.As(err, &gqlErrs) {
		return gqlErrs.Payload()
	}
	return nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
