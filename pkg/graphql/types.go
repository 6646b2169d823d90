package graphql

import (
	"slices"
	"strings"
)

// ServiceType is the care vertical enum of the remote schema.
type ServiceType string

const (
	ServiceChildCare    ServiceType = "CHILD_CARE"
	ServiceSeniorCare   ServiceType = "SENIOR_CARE"
	ServicePetCare      ServiceType = "PET_CARE"
	ServiceTutoring     ServiceType = "TUTORING"
	ServiceHousekeeping ServiceType = "HOUSEKEEPING"
)

var serviceTypes = []ServiceType{ServiceChildCare, ServiceSeniorCare, ServicePetCare, ServiceTutoring, ServiceHousekeeping}

// ServiceTypes lists every vertical.
func ServiceTypes() []ServiceType { return slices.Clone(serviceTypes) }

func (s ServiceType) Valid() bool { return slices.Contains(serviceTypes, s) }

// PaymentType is how a seeker plans to pay a caregiver.
type PaymentType string

const (
	PaymentCashOrCheck    PaymentType = "CASH_OR_CHECK"
	PaymentPayrollService PaymentType = "PAYROLL_SERVICE"
)

func (p PaymentType) Valid() bool {
	return p == PaymentCashOrCheck || p == PaymentPayrollService
}

// CareDate is when a seeker needs care to start.
type CareDate string

const (
	CareRightNow     CareDate = "RIGHT_NOW"
	CareWithinAWeek  CareDate = "WITHIN_A_WEEK"
	CareIn1To2Months CareDate = "IN_1_2_MONTHS"
	CareJustBrowsing CareDate = "JUST_BROWSING"
)

func (c CareDate) Valid() bool {
	return slices.Contains([]CareDate{CareRightNow, CareWithinAWeek, CareIn1To2Months, CareJustBrowsing}, c)
}

// Gender as collected on provider profiles.
type Gender string

const (
	GenderFemale      Gender = "FEMALE"
	GenderMale        Gender = "MALE"
	GenderNonBinary   Gender = "NON_BINARY"
	GenderUndisclosed Gender = "UNDISCLOSED"
)

func (g Gender) Valid() bool {
	return slices.Contains([]Gender{GenderFemale, GenderMale, GenderNonBinary, GenderUndisclosed}, g)
}

// DayOfWeek is used for provider availability.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

func (d DayOfWeek) Valid() bool {
	return slices.Contains([]DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}, d)
}

// AgeGroup buckets children by age.
type AgeGroup string

const (
	AgeNewborn          AgeGroup = "NEWBORN"
	AgeToddler          AgeGroup = "TODDLER"
	AgeEarlySchool      AgeGroup = "EARLY_SCHOOL"
	AgeElementarySchool AgeGroup = "ELEMENTARY_SCHOOL"
	AgeTeen             AgeGroup = "TEEN"
)

func (a AgeGroup) Valid() bool {
	return slices.Contains([]AgeGroup{AgeNewborn, AgeToddler, AgeEarlySchool, AgeElementarySchool, AgeTeen}, a)
}

// ParseEnum normalises raw user input ("cash or check", "cash_or_check") into
// the upper snake case used by schema enums.
func ParseEnum[T ~string](raw string) T {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.NewReplacer(" ", "_", "-", "_").Replace(trimmed)
	return T(strings.ToUpper(trimmed))
}

// ZipcodeDetails is the payload of the ZipcodeDetails query.
type ZipcodeDetails struct {
	Zipcode string `json:"zipcode"`
	City    string `json:"city"`
	State   string `json:"state"`
}

// NearbyCaregivers is the payload of the NearbyCaregiversCount query.
type NearbyCaregivers struct {
	Count  int `json:"count"`
	Radius int `json:"radius"`
}

// InputError is a field-scoped validation failure returned inside a mutation
// union payload.
type InputError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// MutationResult decodes the Success/Error union returned by every mutation.
type MutationResult struct {
	Typename  string       `json:"__typename"`
	MemberID  string       `json:"memberId,omitempty"`
	AuthToken string       `json:"authToken,omitempty"`
	JobID     string       `json:"jobId,omitempty"`
	Errors    []InputError `json:"errors,omitempty"`
}

// Err converts the error branch of the union into an InputErrors value.
func (r MutationResult) Err() error {
	if strings.HasSuffix(r.Typename, "Error") || len(r.Errors) > 0 {
		return InputErrors(r.Errors)
	}
	return nil
}

// SeekerCreateInput creates a seeker account at the end of a seeker flow.
type SeekerCreateInput struct {
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Zipcode     string      `json:"zipcode"`
	ServiceType ServiceType `json:"serviceType"`
	Referrer    string      `json:"referrer,omitempty"`
}

// ProviderCreateInput creates a provider account.
type ProviderCreateInput struct {
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Zipcode     string      `json:"zipcode"`
	ServiceType ServiceType `json:"serviceType"`
}

// ProviderNameUpdateInput sets the provider's name and birth date.
type ProviderNameUpdateInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Gender      Gender `json:"gender,omitempty"`
}

// ProviderPhoneUpdateInput stores a verified-format phone number.
type ProviderPhoneUpdateInput struct {
	PhoneNumber string `json:"phoneNumber"`
}

// CaregiverAttributesUpdateInput carries rate and experience details.
type CaregiverAttributesUpdateInput struct {
	ServiceType       ServiceType `json:"serviceType"`
	RateMin           int         `json:"rateMin"`
	RateMax           int         `json:"rateMax"`
	YearsOfExperience int         `json:"yearsOfExperience"`
	Bio               string      `json:"bio,omitempty"`
	Qualities         []string    `json:"qualities,omitempty"`
}

// ProviderJobInterestUpdateInput carries availability and job preferences.
type ProviderJobInterestUpdateInput struct {
	ServiceType  ServiceType `json:"serviceType"`
	Availability []DayOfWeek `json:"availability"`
	Preferences  []string    `json:"preferences,omitempty"`
}

// UniversalProviderAttributesUpdateInput carries attributes shared by all
// verticals.
type UniversalProviderAttributesUpdateInput struct {
	EducationLevel    string   `json:"educationLevel,omitempty"`
	HasTransportation bool     `json:"hasTransportation"`
	Languages         []string `json:"languages,omitempty"`
}

// SeekerJobCreateInput posts the seeker's first job.
type SeekerJobCreateInput struct {
	ServiceType ServiceType `json:"serviceType"`
	Zipcode     string      `json:"zipcode"`
	StartDate   CareDate    `json:"startDate"`
	RateMin     int         `json:"rateMin"`
	RateMax     int         `json:"rateMax"`
	PaymentType PaymentType `json:"paymentType"`
	Details     []string    `json:"details,omitempty"`
}
