package state

import "github.com/goliatone/go-enrollment/pkg/graphql"

// Domain names one sub-tree of AppState.
type Domain string

const (
	DomainSeeker     Domain = "seeker"
	DomainProviderCC Domain = "providerCC"
	DomainProviderSC Domain = "providerSC"
	DomainProviderPC Domain = "providerPC"
	DomainProviderTU Domain = "providerTU"
	DomainProviderHK Domain = "providerHK"
	DomainFlow       Domain = "flow"
	DomainApp        Domain = "app"
)

// ProviderDomain returns the provider sub-tree for a vertical.
func ProviderDomain(vertical graphql.ServiceType) (Domain, bool) {
	switch vertical {
	case graphql.ServiceChildCare:
		return DomainProviderCC, true
	case graphql.ServiceSeniorCare:
		return DomainProviderSC, true
	case graphql.ServicePetCare:
		return DomainProviderPC, true
	case graphql.ServiceTutoring:
		return DomainProviderTU, true
	case graphql.ServiceHousekeeping:
		return DomainProviderHK, true
	}
	return "", false
}

// AppState is the root of the enrollment state tree.
type AppState struct {
	Seeker     SeekerState     `json:"seeker"`
	ProviderCC ProviderCCState `json:"providerCC"`
	ProviderSC ProviderSCState `json:"providerSC"`
	ProviderPC ProviderPCState `json:"providerPC"`
	ProviderTU ProviderTUState `json:"providerTU"`
	ProviderHK ProviderHKState `json:"providerHK"`
	Flow       FlowState       `json:"flow"`
}

// Kid is one child the seeker needs care for.
type Kid struct {
	AgeGroup graphql.AgeGroup `json:"ageGroup"`
}

// SeekerState collects everything a care seeker enters.
type SeekerState struct {
	ZipCode          string              `json:"zipCode,omitempty"`
	City             string              `json:"city,omitempty"`
	State            string              `json:"state,omitempty"`
	Vertical         graphql.ServiceType `json:"vertical,omitempty"`
	CareDate         graphql.CareDate    `json:"careDate,omitempty"`
	Kids             []Kid               `json:"kids,omitempty"`
	NumberOfChildren int                 `json:"numberOfChildren,omitempty"`
	RateMin          int                 `json:"rateMin"`
	RateMax          int                 `json:"rateMax"`
	PaymentType      graphql.PaymentType `json:"paymentType"`
	FirstName        string              `json:"firstName,omitempty"`
	LastName         string              `json:"lastName,omitempty"`
	Email            string              `json:"email,omitempty"`
	CareRecipient    string              `json:"careRecipient,omitempty"`
	HelpTypes        []string            `json:"helpTypes,omitempty"`
	PetTypes         []string            `json:"petTypes,omitempty"`
	Subjects         []string            `json:"subjects,omitempty"`
	GradeLevel       string              `json:"gradeLevel,omitempty"`
	Bedrooms         int                 `json:"bedrooms,omitempty"`
	Bathrooms        int                 `json:"bathrooms,omitempty"`
	Frequency        string              `json:"frequency,omitempty"`
	NearbyCaregivers int                 `json:"nearbyCaregivers,omitempty"`
	MemberID         string              `json:"memberId,omitempty"`
	JobID            string              `json:"jobId,omitempty"`
}

// ProviderCommon is shared by every provider vertical.
type ProviderCommon struct {
	ZipCode           string              `json:"zipCode,omitempty"`
	City              string              `json:"city,omitempty"`
	State             string              `json:"state,omitempty"`
	FirstName         string              `json:"firstName,omitempty"`
	LastName          string              `json:"lastName,omitempty"`
	Email             string              `json:"email,omitempty"`
	Phone             string              `json:"phone,omitempty"`
	DateOfBirth       string              `json:"dateOfBirth,omitempty"`
	Gender            graphql.Gender      `json:"gender,omitempty"`
	Availability      []graphql.DayOfWeek `json:"availability,omitempty"`
	RateMin           int                 `json:"rateMin"`
	RateMax           int                 `json:"rateMax"`
	YearsOfExperience int                 `json:"yearsOfExperience,omitempty"`
	Bio               string              `json:"bio,omitempty"`
	EducationLevel    string              `json:"educationLevel,omitempty"`
	MemberID          string              `json:"memberId,omitempty"`
	Verified          bool                `json:"verified,omitempty"`
}

// ProviderCCState is a child care provider.
type ProviderCCState struct {
	ProviderCommon
	AgeGroups       []string `json:"ageGroups,omitempty"`
	NumberOfKidsMax int      `json:"numberOfKidsMax,omitempty"`
	CPRTrained      bool     `json:"cprTrained,omitempty"`
}

// ProviderSCState is a senior care provider.
type ProviderSCState struct {
	ProviderCommon
	HelpTypes         []string `json:"helpTypes,omitempty"`
	HasTransportation bool     `json:"hasTransportation,omitempty"`
}

// ProviderPCState is a pet care provider.
type ProviderPCState struct {
	ProviderCommon
	ServiceTypes []string `json:"serviceTypes,omitempty"`
	PetTypes     []string `json:"petTypes,omitempty"`
}

// ProviderTUState is a tutor.
type ProviderTUState struct {
	ProviderCommon
	Subjects       []string `json:"subjects,omitempty"`
	GradeLevels    []string `json:"gradeLevels,omitempty"`
	OnlineTutoring bool     `json:"onlineTutoring,omitempty"`
}

// ProviderHKState is a housekeeper.
type ProviderHKState struct {
	ProviderCommon
	Services       []string `json:"services,omitempty"`
	BringsSupplies bool     `json:"bringsSupplies,omitempty"`
}

// FlowState tracks progress through the active flow.
type FlowState struct {
	Name      string   `json:"name,omitempty"`
	Visited   []string `json:"visited,omitempty"`
	MemberID  string   `json:"memberId,omitempty"`
	AuthToken string   `json:"authToken,omitempty"`
	Completed bool     `json:"completed,omitempty"`
}

// Authenticated reports whether an account has been created or signed in.
func (f FlowState) Authenticated() bool { return f.AuthToken != "" }

// Active reports whether name is the flow in progress. A completed flow is
// no longer active.
func (f FlowState) Active(name string) bool {
	return name != "" && f.Name == name && !f.Completed
}

// HasVisited reports whether step has been completed in the active flow.
func (f FlowState) HasVisited(step string) bool {
	for _, v := range f.Visited {
		if v == step {
			return true
		}
	}
	return false
}

// RateRange is an hourly rate in whole dollars.
type RateRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

var defaultRates = map[graphql.ServiceType]RateRange{
	graphql.ServiceChildCare:    {Min: 15, Max: 25},
	graphql.ServiceSeniorCare:   {Min: 16, Max: 28},
	graphql.ServicePetCare:      {Min: 14, Max: 22},
	graphql.ServiceTutoring:     {Min: 20, Max: 40},
	graphql.ServiceHousekeeping: {Min: 17, Max: 27},
}

// DefaultRates returns the suggested hourly range for a vertical.
func DefaultRates(vertical graphql.ServiceType) RateRange {
	return defaultRates[vertical]
}

// InitialState returns the tree a new session starts with.
func InitialState() AppState {
	provider := func(vertical graphql.ServiceType) ProviderCommon {
		rates := DefaultRates(vertical)
		return ProviderCommon{RateMin: rates.Min, RateMax: rates.Max}
	}
	return AppState{
		Seeker:     SeekerState{PaymentType: graphql.PaymentCashOrCheck},
		ProviderCC: ProviderCCState{ProviderCommon: provider(graphql.ServiceChildCare)},
		ProviderSC: ProviderSCState{ProviderCommon: provider(graphql.ServiceSeniorCare)},
		ProviderPC: ProviderPCState{ProviderCommon: provider(graphql.ServicePetCare)},
		ProviderTU: ProviderTUState{ProviderCommon: provider(graphql.ServiceTutoring)},
		ProviderHK: ProviderHKState{ProviderCommon: provider(graphql.ServiceHousekeeping)},
	}
}
