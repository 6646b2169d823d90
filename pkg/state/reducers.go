package state

import (
	"slices"

	"github.com/goliatone/go-enrollment/pkg/fields"
	"github.com/goliatone/go-enrollment/pkg/graphql"
)

// Reducer maps a state and an action to the next state.
type Reducer func(state AppState, action Action) AppState

func payload[T any](action Action) (T, bool) {
	v, ok := action.Payload.(T)
	return v, ok
}

func orderedRates(r RateRange) RateRange {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

// Root applies every domain reducer in a fixed order. app/RESET returns
// InitialState.
func Root(state AppState, action Action) AppState {
	if action.Type == AppReset {
		return InitialState()
	}
	for _, reduce := range []Reducer{
		SeekerReducer,
		ProviderCCReducer,
		ProviderSCReducer,
		ProviderPCReducer,
		ProviderTUReducer,
		ProviderHKReducer,
		FlowReducer,
	} {
		state = reduce(state, action)
	}
	return state
}

// SeekerReducer handles seeker/* actions.
func SeekerReducer(state AppState, action Action) AppState {
	domain, verb := action.Type.Split()
	if domain != DomainSeeker {
		return state
	}
	s := state.Seeker

	switch verb {
	case VerbSetZipCode:
		p, ok := payload[ZipCode](action)
		if !ok {
			return state
		}
		zip, err := fields.NormalizeZip(p.Zip)
		if err != nil {
			return state
		}
		s.ZipCode, s.City, s.State = zip, p.City, p.State
	case VerbSetVertical:
		v, ok := payload[graphql.ServiceType](action)
		if !ok || !v.Valid() {
			return state
		}
		if v != s.Vertical {
			rates := DefaultRates(v)
			s.RateMin, s.RateMax = rates.Min, rates.Max
		}
		s.Vertical = v
	case VerbSetCareDate:
		v, ok := payload[graphql.CareDate](action)
		if !ok || !v.Valid() {
			return state
		}
		s.CareDate = v
	case VerbSetKids:
		p, ok := payload[Kids](action)
		if !ok {
			return state
		}
		kids := make([]Kid, 0, len(p.AgeGroups))
		for _, group := range p.AgeGroups {
			if group.Valid() {
				kids = append(kids, Kid{AgeGroup: group})
			}
		}
		s.Kids = kids
		s.NumberOfChildren = max(p.Count, len(kids))
	case VerbSetRateRange:
		p, ok := payload[RateRange](action)
		if !ok {
			return state
		}
		p = orderedRates(p)
		s.RateMin, s.RateMax = p.Min, p.Max
	case VerbSetPaymentType:
		v, ok := payload[graphql.PaymentType](action)
		if !ok || !v.Valid() {
			return state
		}
		s.PaymentType = v
	case VerbSetName:
		p, ok := payload[Name](action)
		if !ok {
			return state
		}
		s.FirstName, s.LastName = p.First, p.Last
	case VerbSetEmail:
		v, ok := payload[string](action)
		if !ok {
			return state
		}
		s.Email = v
	case VerbSetCareRecipient:
		p, ok := payload[CareRecipient](action)
		if !ok {
			return state
		}
		s.CareRecipient = p.Relationship
		s.HelpTypes = slices.Clone(p.HelpTypes)
	case VerbSetPetTypes:
		v, ok := payload[[]string](action)
		if !ok {
			return state
		}
		s.PetTypes = slices.Clone(v)
	case VerbSetTutoring:
		p, ok := payload[Tutoring](action)
		if !ok {
			return state
		}
		s.Subjects = slices.Clone(p.Subjects)
		s.GradeLevel = p.GradeLevel
	case VerbSetHome:
		p, ok := payload[Home](action)
		if !ok {
			return state
		}
		s.Bedrooms, s.Bathrooms, s.Frequency = p.Bedrooms, p.Bathrooms, p.Frequency
	case VerbSetNearbyCaregivers:
		v, ok := payload[int](action)
		if !ok {
			return state
		}
		s.NearbyCaregivers = v
	case VerbSetMember:
		p, ok := payload[Member](action)
		if !ok {
			return state
		}
		s.MemberID = p.MemberID
		if p.Email != "" {
			s.Email = p.Email
		}
	case VerbSetJob:
		v, ok := payload[string](action)
		if !ok {
			return state
		}
		s.JobID = v
	default:
		return state
	}

	s.Kids = slices.Clone(s.Kids)
	s.HelpTypes = slices.Clone(s.HelpTypes)
	s.PetTypes = slices.Clone(s.PetTypes)
	s.Subjects = slices.Clone(s.Subjects)
	state.Seeker = s
	return state
}

// reduceCommon applies the verbs every provider domain understands. The
// boolean reports whether the action was handled.
func reduceCommon(c ProviderCommon, verb Verb, action Action) (ProviderCommon, bool) {
	switch verb {
	case VerbSetZipCode:
		p, ok := payload[ZipCode](action)
		if !ok {
			return c, false
		}
		zip, err := fields.NormalizeZip(p.Zip)
		if err != nil {
			return c, false
		}
		c.ZipCode, c.City, c.State = zip, p.City, p.State
	case VerbSetName:
		p, ok := payload[Name](action)
		if !ok {
			return c, false
		}
		c.FirstName, c.LastName = p.First, p.Last
	case VerbSetEmail:
		v, ok := payload[string](action)
		if !ok {
			return c, false
		}
		c.Email = v
	case VerbSetPhone:
		v, ok := payload[string](action)
		if !ok {
			return c, false
		}
		phone, err := fields.NormalizePhone(v)
		if err != nil {
			return c, false
		}
		c.Phone = phone
	case VerbSetDateOfBirth:
		p, ok := payload[DateOfBirth](action)
		if !ok {
			return c, false
		}
		dob, err := fields.ParseDate(p.Date)
		if err != nil {
			return c, false
		}
		c.DateOfBirth = dob.Format(fields.ISODateLayout)
		if p.Gender.Valid() {
			c.Gender = p.Gender
		}
	case VerbSetAvailability:
		v, ok := payload[[]graphql.DayOfWeek](action)
		if !ok {
			return c, false
		}
		days := make([]graphql.DayOfWeek, 0, len(v))
		for _, d := range v {
			if d.Valid() && !slices.Contains(days, d) {
				days = append(days, d)
			}
		}
		c.Availability = days
	case VerbSetRateRange:
		p, ok := payload[RateRange](action)
		if !ok {
			return c, false
		}
		p = orderedRates(p)
		c.RateMin, c.RateMax = p.Min, p.Max
	case VerbSetProfile:
		p, ok := payload[Profile](action)
		if !ok {
			return c, false
		}
		c.YearsOfExperience, c.Bio, c.EducationLevel = p.YearsOfExperience, p.Bio, p.EducationLevel
	case VerbSetMember:
		p, ok := payload[Member](action)
		if !ok {
			return c, false
		}
		c.MemberID = p.MemberID
		if p.Email != "" {
			c.Email = p.Email
		}
	case VerbSetVerified:
		v, ok := payload[bool](action)
		if !ok {
			return c, false
		}
		c.Verified = v
	default:
		return c, false
	}
	c.Availability = slices.Clone(c.Availability)
	return c, true
}

// ProviderCCReducer handles providerCC/* actions.
func ProviderCCReducer(state AppState, action Action) AppState {
	domain, verb := action.Type.Split()
	if domain != DomainProviderCC {
		return state
	}
	p := state.ProviderCC
	if common, ok := reduceCommon(p.ProviderCommon, verb, action); ok {
		p.ProviderCommon = common
	} else if details, ok := payload[CCDetails](action); ok && verb == VerbSetDetails {
		p.AgeGroups = slices.Clone(details.AgeGroups)
		p.NumberOfKidsMax = details.NumberOfKidsMax
		p.CPRTrained = details.CPRTrained
	} else {
		return state
	}
	p.AgeGroups = slices.Clone(p.AgeGroups)
	state.ProviderCC = p
	return state
}

// ProviderSCReducer handles providerSC/* actions.
func ProviderSCReducer(state AppState, action Action) AppState {
	domain, verb := action.Type.Split()
	if domain != DomainProviderSC {
		return state
	}
	p := state.ProviderSC
	if common, ok := reduceCommon(p.ProviderCommon, verb, action); ok {
		p.ProviderCommon = common
	} else if details, ok := payload[SCDetails](action); ok && verb == VerbSetDetails {
		p.HelpTypes = slices.Clone(details.HelpTypes)
		p.HasTransportation = details.HasTransportation
	} else {
		return state
	}
	p.HelpTypes = slices.Clone(p.HelpTypes)
	state.ProviderSC = p
	return state
}

// ProviderPCReducer handles providerPC/* actions.
func ProviderPCReducer(state AppState, action Action) AppState {
	domain, verb := action.Type.Split()
	if domain != DomainProviderPC {
		return state
	}
	p := state.ProviderPC
	if common, ok := reduceCommon(p.ProviderCommon, verb, action); ok {
		p.ProviderCommon = common
	} else if details, ok := payload[PCDetails](action); ok && verb == VerbSetDetails {
		p.ServiceTypes = slices.Clone(details.ServiceTypes)
		p.PetTypes = slices.Clone(details.PetTypes)
	} else {
		return state
	}
	p.ServiceTypes = slices.Clone(p.ServiceTypes)
	p.PetTypes = slices.Clone(p.PetTypes)
	state.ProviderPC = p
	return state
}

// ProviderTUReducer handles providerTU/* actions.
func ProviderTUReducer(state AppState, action Action) AppState {
	domain, verb := action.Type.Split()
	if domain != DomainProviderTU {
		return state
	}
	p := state.ProviderTU
	if common, ok := reduceCommon(p.ProviderCommon, verb, action); ok {
		p.ProviderCommon = common
	} else if details, ok := payload[TUDetails](action); ok && verb == VerbSetDetails {
		p.Subjects = slices.Clone(details.Subjects)
		p.GradeLevels = slices.Clone(details.GradeLevels)
		p.OnlineTutoring = details.OnlineTutoring
	} else {
		return state
	}
	p.Subjects = slices.Clone(p.Subjects)
	p.GradeLevels = slices.Clone(p.GradeLevels)
	state.ProviderTU = p
	return state
}

// ProviderHKReducer handles providerHK/* actions.
func ProviderHKReducer(state AppState, action Action) AppState {
	domain, verb := action.Type.Split()
	if domain != DomainProviderHK {
		return state
	}
	p := state.ProviderHK
	if common, ok := reduceCommon(p.ProviderCommon, verb, action); ok {
		p.ProviderCommon = common
	} else if details, ok := payload[HKDetails](action); ok && verb == VerbSetDetails {
		p.Services = slices.Clone(details.Services)
		p.BringsSupplies = details.BringsSupplies
	} else {
		return state
	}
	p.Services = slices.Clone(p.Services)
	state.ProviderHK = p
	return state
}

// FlowReducer handles flow/* actions.
func FlowReducer(state AppState, action Action) AppState {
	domain, verb := action.Type.Split()
	if domain != DomainFlow {
		return state
	}
	f := state.Flow

	switch verb {
	case VerbStart:
		name, ok := payload[string](action)
		if !ok || name == "" {
			return state
		}
		if name == f.Name && !f.Completed {
			return state
		}
		f.Name = name
		f.Visited = nil
		f.Completed = false
	case VerbStepCompleted:
		step, ok := payload[string](action)
		if !ok || step == "" {
			return state
		}
		visited := slices.Clone(f.Visited)
		if !slices.Contains(visited, step) {
			visited = append(visited, step)
		}
		f.Visited = visited
	case VerbSetAuth:
		p, ok := payload[Auth](action)
		if !ok {
			return state
		}
		f.MemberID, f.AuthToken = p.MemberID, p.Token
	case VerbComplete:
		f.Completed = true
	default:
		return state
	}

	f.Visited = slices.Clone(f.Visited)
	state.Flow = f
	return state
}
