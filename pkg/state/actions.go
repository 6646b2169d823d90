package state

import (
	"strings"

	"github.com/goliatone/go-enrollment/pkg/graphql"
)

// ActionType is "<domain>/<VERB>".
type ActionType string

// Verb is the part of an ActionType after the domain.
type Verb string

// Action is the only way to change AppState.
type Action struct {
	Type    ActionType `json:"type"`
	Payload any        `json:"payload,omitempty"`
}

// Type builds the ActionType for verb on domain.
func Type(domain Domain, verb Verb) ActionType {
	return ActionType(string(domain) + "/" + string(verb))
}

// Split returns the domain and verb of t.
func (t ActionType) Split() (Domain, Verb) {
	domain, verb, ok := strings.Cut(string(t), "/")
	if !ok {
		return "", Verb(t)
	}
	return Domain(domain), Verb(verb)
}

// Verbs shared by seeker and provider domains.
const (
	VerbSetZipCode   Verb = "SET_ZIP_CODE"
	VerbSetName      Verb = "SET_NAME"
	VerbSetEmail     Verb = "SET_EMAIL"
	VerbSetRateRange Verb = "SET_RATE_RANGE"
	VerbSetMember    Verb = "SET_MEMBER"
)

// Seeker verbs.
const (
	VerbSetVertical         Verb = "SET_VERTICAL"
	VerbSetCareDate         Verb = "SET_CARE_DATE"
	VerbSetKids             Verb = "SET_KIDS"
	VerbSetPaymentType      Verb = "SET_PAYMENT_TYPE"
	VerbSetCareRecipient    Verb = "SET_CARE_RECIPIENT"
	VerbSetPetTypes         Verb = "SET_PET_TYPES"
	VerbSetTutoring         Verb = "SET_TUTORING"
	VerbSetHome             Verb = "SET_HOME"
	VerbSetNearbyCaregivers Verb = "SET_NEARBY_CAREGIVERS"
	VerbSetJob              Verb = "SET_JOB"
)

// Provider verbs.
const (
	VerbSetPhone        Verb = "SET_PHONE"
	VerbSetDateOfBirth  Verb = "SET_DATE_OF_BIRTH"
	VerbSetAvailability Verb = "SET_AVAILABILITY"
	VerbSetProfile      Verb = "SET_PROFILE"
	VerbSetDetails      Verb = "SET_DETAILS"
	VerbSetVerified     Verb = "SET_VERIFIED"
)

// Flow and app verbs.
const (
	VerbStart         Verb = "START"
	VerbStepCompleted Verb = "STEP_COMPLETED"
	VerbSetAuth       Verb = "SET_AUTH"
	VerbComplete      Verb = "COMPLETE"
	VerbReset         Verb = "RESET"
)

var (
	FlowStart         = Type(DomainFlow, VerbStart)
	FlowStepCompleted = Type(DomainFlow, VerbStepCompleted)
	FlowSetAuth       = Type(DomainFlow, VerbSetAuth)
	FlowComplete      = Type(DomainFlow, VerbComplete)
	AppReset          = Type(DomainApp, VerbReset)
)

// ZipCode is the payload of SET_ZIP_CODE.
type ZipCode struct {
	Zip   string `json:"zip"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// Name is the payload of SET_NAME.
type Name struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// Member is the payload of SET_MEMBER.
type Member struct {
	MemberID string `json:"memberId"`
	Email    string `json:"email,omitempty"`
}

// Kids is the payload of seeker SET_KIDS.
type Kids struct {
	Count     int                `json:"count"`
	AgeGroups []graphql.AgeGroup `json:"ageGroups"`
}

// CareRecipient is the payload of seeker SET_CARE_RECIPIENT.
type CareRecipient struct {
	Relationship string   `json:"relationship"`
	HelpTypes    []string `json:"helpTypes,omitempty"`
}

// Tutoring is the payload of seeker SET_TUTORING.
type Tutoring struct {
	Subjects   []string `json:"subjects"`
	GradeLevel string   `json:"gradeLevel,omitempty"`
}

// Home is the payload of seeker SET_HOME.
type Home struct {
	Bedrooms  int    `json:"bedrooms"`
	Bathrooms int    `json:"bathrooms"`
	Frequency string `json:"frequency,omitempty"`
}

// DateOfBirth is the payload of provider SET_DATE_OF_BIRTH.
type DateOfBirth struct {
	Date   string         `json:"date"`
	Gender graphql.Gender `json:"gender,omitempty"`
}

// Profile is the payload of provider SET_PROFILE.
type Profile struct {
	YearsOfExperience int    `json:"yearsOfExperience"`
	Bio               string `json:"bio,omitempty"`
	EducationLevel    string `json:"educationLevel,omitempty"`
}

// CCDetails is the child care payload of SET_DETAILS.
type CCDetails struct {
	AgeGroups       []string `json:"ageGroups"`
	NumberOfKidsMax int      `json:"numberOfKidsMax"`
	CPRTrained      bool     `json:"cprTrained"`
}

// SCDetails is the senior care payload of SET_DETAILS.
type SCDetails struct {
	HelpTypes         []string `json:"helpTypes"`
	HasTransportation bool     `json:"hasTransportation"`
}

// PCDetails is the pet care payload of SET_DETAILS.
type PCDetails struct {
	ServiceTypes []string `json:"serviceTypes"`
	PetTypes     []string `json:"petTypes"`
}

// TUDetails is the tutoring payload of SET_DETAILS.
type TUDetails struct {
	Subjects       []string `json:"subjects"`
	GradeLevels    []string `json:"gradeLevels"`
	OnlineTutoring bool     `json:"onlineTutoring"`
}

// HKDetails is the housekeeping payload of SET_DETAILS.
type HKDetails struct {
	Services       []string `json:"services"`
	BringsSupplies bool     `json:"bringsSupplies"`
}

// Auth is the payload of flow/SET_AUTH.
type Auth struct {
	MemberID string `json:"memberId"`
	Token    string `json:"token"`
}

// SetZipCode records a zip code and its resolved city and state.
func SetZipCode(domain Domain, zip, city, st string) Action {
	return Action{Type: Type(domain, VerbSetZipCode), Payload: ZipCode{Zip: zip, City: city, State: st}}
}

// SetName records first and last name.
func SetName(domain Domain, first, last string) Action {
	return Action{Type: Type(domain, VerbSetName), Payload: Name{First: first, Last: last}}
}

// SetEmail records the account email.
func SetEmail(domain Domain, email string) Action {
	return Action{Type: Type(domain, VerbSetEmail), Payload: email}
}

// SetRateRange records an hourly rate range.
func SetRateRange(domain Domain, min, max int) Action {
	return Action{Type: Type(domain, VerbSetRateRange), Payload: RateRange{Min: min, Max: max}}
}

// SetMember records the member id returned by account creation.
func SetMember(domain Domain, memberID string) Action {
	return Action{Type: Type(domain, VerbSetMember), Payload: Member{MemberID: memberID}}
}

// SetVertical selects the seeker's care vertical.
func SetVertical(vertical graphql.ServiceType) Action {
	return Action{Type: Type(DomainSeeker, VerbSetVertical), Payload: vertical}
}

// SetCareDate records when care should start.
func SetCareDate(date graphql.CareDate) Action {
	return Action{Type: Type(DomainSeeker, VerbSetCareDate), Payload: date}
}

// SetPaymentType records how the seeker plans to pay.
func SetPaymentType(payment graphql.PaymentType) Action {
	return Action{Type: Type(DomainSeeker, VerbSetPaymentType), Payload: payment}
}

// SetNearbyCaregivers records the caregiver count shown to the seeker.
func SetNearbyCaregivers(count int) Action {
	return Action{Type: Type(DomainSeeker, VerbSetNearbyCaregivers), Payload: count}
}

// SetJob records the job posted for the seeker.
func SetJob(jobID string) Action {
	return Action{Type: Type(DomainSeeker, VerbSetJob), Payload: jobID}
}

// SetPhone records a provider phone number.
func SetPhone(domain Domain, phone string) Action {
	return Action{Type: Type(domain, VerbSetPhone), Payload: phone}
}

// SetVerified marks a provider as verified.
func SetVerified(domain Domain, verified bool) Action {
	return Action{Type: Type(domain, VerbSetVerified), Payload: verified}
}

// StartFlow begins the named flow, clearing progress from any previous one.
func StartFlow(name string) Action {
	return Action{Type: FlowStart, Payload: name}
}

// StepCompleted marks step as done in the active flow.
func StepCompleted(step string) Action {
	return Action{Type: FlowStepCompleted, Payload: step}
}

// SetAuth stores the credentials of a freshly created account.
func SetAuth(memberID, token string) Action {
	return Action{Type: FlowSetAuth, Payload: Auth{MemberID: memberID, Token: token}}
}

// CompleteFlow marks the active flow as finished.
func CompleteFlow() Action {
	return Action{Type: FlowComplete}
}

// Reset returns the whole tree to InitialState.
func Reset() Action {
	return Action{Type: AppReset}
}
