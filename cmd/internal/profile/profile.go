// Package profile stores and serves user profiles keyed by the identity-provider user id.
package profile

// Profile is the stored user profile. Every field is optional on the wire; ID is required
// for Upsert.
type Profile struct {
	ID                    string                `json:"id,omitempty"`
	Gender                *int                  `json:"gender,omitempty"`
	BirthDate             string                `json:"birthDate,omitempty"`
	PhoneNumber           string                `json:"phoneNumber,omitempty"`
	Address               *Address              `json:"address,omitempty"`
	FirstName             string                `json:"firstName,omitempty"`
	LastName              string                `json:"lastName,omitempty"`
	UserName              string                `json:"userName,omitempty"`
	UpdatedAt             string                `json:"updatedAt,omitempty"`
	QuestionnaireAnswers  []QuestionnaireAnswer `json:"questionnaireAnswers,omitempty"`
	PackageTier           int                   `json:"packageTier,omitempty"`
	SubscriptionStartDate string                `json:"subscriptionStartDate,omitempty"`
	SubscriptionEndDate   string                `json:"subscriptionEndDate,omitempty"`
	AccessPermissions     []AccessPermission    `json:"accessPermissions,omitempty"`
	Profession            string                `json:"profession,omitempty"`
	PhysicalActivities    []string              `json:"physicalActivities,omitempty"`
	MentalActivities      []string              `json:"mentalActivities,omitempty"`
	Height                float64               `json:"height,omitempty"`
	Weight                float64               `json:"weight,omitempty"`
	Hobbies               []string              `json:"hobbies,omitempty"`
}

// Address is the postal address of a profile.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// QuestionnaireAnswer is one onboarding answer.
type QuestionnaireAnswer struct {
	QuestionID string `json:"questionId,omitempty"`
	Answer     string `json:"answer,omitempty"`
}

// AccessPermission grants access to one product module.
type AccessPermission struct {
	Module string `json:"module"`
	Access bool   `json:"access"`
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	out := p
	if p.Gender != nil {
		g := *p.Gender
		out.Gender = &g
	}
	if p.Address != nil {
		a := *p.Address
		out.Address = &a
	}
	out.QuestionnaireAnswers = cloneSlice(p.QuestionnaireAnswers)
	out.AccessPermissions = cloneSlice(p.AccessPermissions)
	out.PhysicalActivities = cloneSlice(p.PhysicalActivities)
	out.MentalActivities = cloneSlice(p.MentalActivities)
	out.Hobbies = cloneSlice(p.Hobbies)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}
