package state

import (
	"slices"

	"github.com/goliatone/go-enrollment/pkg/graphql"
)

// Values flattens the sub-tree of domain into form field names so pages can
// prefill inputs and visibility rules can read them. Unknown domains yield an
// empty map.
func Values(state AppState, domain Domain) map[string]any {
	switch domain {
	case DomainSeeker:
		s := state.Seeker
		ageGroups := make([]string, 0, len(s.Kids))
		for _, kid := range s.Kids {
			ageGroups = append(ageGroups, string(kid.AgeGroup))
		}
		return map[string]any{
			"zipCode":          s.ZipCode,
			"city":             s.City,
			"state":            s.State,
			"vertical":         string(s.Vertical),
			"careDate":         string(s.CareDate),
			"numberOfChildren": s.NumberOfChildren,
			"ageGroups":        ageGroups,
			"rateMin":          s.RateMin,
			"rateMax":          s.RateMax,
			"paymentType":      string(s.PaymentType),
			"firstName":        s.FirstName,
			"lastName":         s.LastName,
			"email":            s.Email,
			"careRecipient":    s.CareRecipient,
			"helpTypes":        slices.Clone(s.HelpTypes),
			"petTypes":         slices.Clone(s.PetTypes),
			"subjects":         slices.Clone(s.Subjects),
			"gradeLevel":       s.GradeLevel,
			"bedrooms":         s.Bedrooms,
			"bathrooms":        s.Bathrooms,
			"frequency":        s.Frequency,
			"nearbyCaregivers": s.NearbyCaregivers,
			"memberId":         s.MemberID,
			"jobId":            s.JobID,
		}
	case DomainProviderCC:
		p := state.ProviderCC
		out := commonValues(p.ProviderCommon, graphql.ServiceChildCare)
		out["ageGroups"] = slices.Clone(p.AgeGroups)
		out["numberOfKidsMax"] = p.NumberOfKidsMax
		out["cprTrained"] = p.CPRTrained
		return out
	case DomainProviderSC:
		p := state.ProviderSC
		out := commonValues(p.ProviderCommon, graphql.ServiceSeniorCare)
		out["helpTypes"] = slices.Clone(p.HelpTypes)
		out["hasTransportation"] = p.HasTransportation
		return out
	case DomainProviderPC:
		p := state.ProviderPC
		out := commonValues(p.ProviderCommon, graphql.ServicePetCare)
		out["serviceTypes"] = slices.Clone(p.ServiceTypes)
		out["petTypes"] = slices.Clone(p.PetTypes)
		return out
	case DomainProviderTU:
		p := state.ProviderTU
		out := commonValues(p.ProviderCommon, graphql.ServiceTutoring)
		out["subjects"] = slices.Clone(p.Subjects)
		out["gradeLevels"] = slices.Clone(p.GradeLevels)
		out["onlineTutoring"] = p.OnlineTutoring
		return out
	case DomainProviderHK:
		p := state.ProviderHK
		out := commonValues(p.ProviderCommon, graphql.ServiceHousekeeping)
		out["services"] = slices.Clone(p.Services)
		out["bringsSupplies"] = p.BringsSupplies
		return out
	case DomainFlow:
		f := state.Flow
		return map[string]any{
			"name":          f.Name,
			"visited":       slices.Clone(f.Visited),
			"memberId":      f.MemberID,
			"authenticated": f.Authenticated(),
			"completed":     f.Completed,
		}
	}
	return map[string]any{}
}

func commonValues(c ProviderCommon, vertical graphql.ServiceType) map[string]any {
	days := make([]string, 0, len(c.Availability))
	for _, d := range c.Availability {
		days = append(days, string(d))
	}
	return map[string]any{
		"vertical":          string(vertical),
		"zipCode":           c.ZipCode,
		"city":              c.City,
		"state":             c.State,
		"firstName":         c.FirstName,
		"lastName":          c.LastName,
		"email":             c.Email,
		"phone":             c.Phone,
		"dateOfBirth":       c.DateOfBirth,
		"gender":            string(c.Gender),
		"availability":      days,
		"rateMin":           c.RateMin,
		"rateMax":           c.RateMax,
		"yearsOfExperience": c.YearsOfExperience,
		"bio":               c.Bio,
		"educationLevel":    c.EducationLevel,
		"memberId":          c.MemberID,
		"verified":          c.Verified,
	}
}

// Common returns the shared provider fields of domain.
func (s AppState) Common(domain Domain) (ProviderCommon, bool) {
	switch domain {
	case DomainProviderCC:
		return s.ProviderCC.ProviderCommon, true
	case DomainProviderSC:
		return s.ProviderSC.ProviderCommon, true
	case DomainProviderPC:
		return s.ProviderPC.ProviderCommon, true
	case DomainProviderTU:
		return s.ProviderTU.ProviderCommon, true
	case DomainProviderHK:
		return s.ProviderHK.ProviderCommon, true
	}
	return ProviderCommon{}, false
}
