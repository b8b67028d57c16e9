// Package types holds the shared domain model for the arrival-card
// submission engine: the traveler request, reference-data rows, the
// terminal submission result, and the error taxonomy used by the
// classifier. It has no dependencies on the protocol or resolver layers.
package types

import (
	"fmt"
	"strings"
)

// minVerificationTokenLen is the only check applied to the externally
// supplied verification token; its contents are opaque to the engine.
const minVerificationTokenLen = 8

// TravelerRequest is the immutable input to a submission. All fields are
// free text as collected from the traveler; code resolution against live
// server reference data happens later, per session.
type TravelerRequest struct {
	// Identity
	FamilyName  string `json:"family_name"`
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name,omitempty"`
	PassportNo  string `json:"passport_no"`
	Nationality string `json:"nationality"`
	BirthDate   string `json:"birth_date"`
	Gender      string `json:"gender"`
	Occupation  string `json:"occupation"`

	// Contact
	Email       string `json:"email"`
	PhoneCode   string `json:"phone_code"`
	PhoneNumber string `json:"phone_number"`

	// Trip
	ArrivalDate        string `json:"arrival_date"`
	DepartureDate      string `json:"departure_date,omitempty"`
	FlightNo           string `json:"flight_no"`
	DepartureFlightNo  string `json:"departure_flight_no,omitempty"`
	TransportMode      string `json:"transport_mode"`
	TravelMode         string `json:"travel_mode"`
	Purpose            string `json:"purpose"`
	CountryOfBoarding  string `json:"country_of_boarding"`
	StateOfResidence   string `json:"state_of_residence"`
	CityOfResidence    string `json:"city_of_residence,omitempty"`

	// Accommodation. District, sub-district and post code are only
	// consulted for non-hotel accommodation types.
	AccommodationType string `json:"accommodation_type"`
	Province          string `json:"province"`
	District          string `json:"district,omitempty"`
	SubDistrict       string `json:"sub_district,omitempty"`
	PostCode          string `json:"post_code,omitempty"`
	Address           string `json:"address"`

	// VerificationToken is produced by the external human-verification
	// provider and gates step 1 of the protocol.
	VerificationToken string `json:"verification_token"`
}

// requiredFields maps field names to accessors; every field here must be
// non-blank for any protocol step to succeed.
var requiredFields = []struct {
	name string
	get  func(*TravelerRequest) string
}{
	{"family_name", func(r *TravelerRequest) string { return r.FamilyName }},
	{"first_name", func(r *TravelerRequest) string { return r.FirstName }},
	{"passport_no", func(r *TravelerRequest) string { return r.PassportNo }},
	{"nationality", func(r *TravelerRequest) string { return r.Nationality }},
	{"birth_date", func(r *TravelerRequest) string { return r.BirthDate }},
	{"gender", func(r *TravelerRequest) string { return r.Gender }},
	{"occupation", func(r *TravelerRequest) string { return r.Occupation }},
	{"email", func(r *TravelerRequest) string { return r.Email }},
	{"phone_code", func(r *TravelerRequest) string { return r.PhoneCode }},
	{"phone_number", func(r *TravelerRequest) string { return r.PhoneNumber }},
	{"arrival_date", func(r *TravelerRequest) string { return r.ArrivalDate }},
	{"flight_no", func(r *TravelerRequest) string { return r.FlightNo }},
	{"transport_mode", func(r *TravelerRequest) string { return r.TransportMode }},
	{"travel_mode", func(r *TravelerRequest) string { return r.TravelMode }},
	{"purpose", func(r *TravelerRequest) string { return r.Purpose }},
	{"country_of_boarding", func(r *TravelerRequest) string { return r.CountryOfBoarding }},
	{"state_of_residence", func(r *TravelerRequest) string { return r.StateOfResidence }},
	{"accommodation_type", func(r *TravelerRequest) string { return r.AccommodationType }},
	{"province", func(r *TravelerRequest) string { return r.Province }},
	{"address", func(r *TravelerRequest) string { return r.Address }},
}

// Validate is the pure precondition check run before any network call.
// It reports the first missing required field, unparseable date, or an
// undersized verification token as a *ValidationError.
func (r *TravelerRequest) Validate() error {
	for _, f := range requiredFields {
		if strings.TrimSpace(f.get(r)) == "" {
			return &ValidationError{Field: f.name, Reason: "required field is empty"}
		}
	}
	for _, d := range []struct{ name, value string }{
		{"birth_date", r.BirthDate},
		{"arrival_date", r.ArrivalDate},
		{"departure_date", r.DepartureDate},
	} {
		if d.value == "" {
			continue
		}
		if _, err := ParseDate(d.value); err != nil {
			return &ValidationError{
				Field:  d.name,
				Reason: fmt.Sprintf("unparseable date %q", d.value),
			}
		}
	}
	if len(strings.TrimSpace(r.VerificationToken)) < minVerificationTokenLen {
		return &ValidationError{Field: "verification_token", Reason: "verification token missing or too short"}
	}
	return nil
}
