// Package payload assembles and validates the step-5 form submission
// body from traveler input plus the session-resolved reference rows.
// Every check here runs before the form touches the network.
package payload

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"arrivalcard/internal/session"
	"arrivalcard/internal/types"
)

// Form is the step-5 submission body: the personal, trip and health
// sections the remote service expects.
type Form struct {
	Personal PersonalInfo `json:"personalInfo"`
	Trip     TripInfo     `json:"tripInfo"`
	Health   HealthInfo   `json:"healthInfo"`
}

// PersonalInfo carries the traveler identity and contact section. All
// free text is upper-cased before transmission.
type PersonalInfo struct {
	FamilyName     string `json:"familyName"`
	FirstName      string `json:"firstName"`
	MiddleName     string `json:"middleName,omitempty"`
	PassportNo     string `json:"passportNo"`
	NationalityKey string `json:"nationalityId"`
	GenderCode     string `json:"gender"`
	BirthDate      string `json:"birthDate"`
	Occupation     string `json:"occupation"`
	PhoneCode      string `json:"phoneCode"`
	PhoneNumber    string `json:"phoneNo"`
	Email          string `json:"email"`
}

// TripInfo carries arrival/departure and accommodation details. The
// departure transport key always mirrors the arrival key: both legs
// share one session-resolved transport vocabulary.
type TripInfo struct {
	ArrivalDate         string `json:"arrDate"`
	DepartureDate       string `json:"depDate,omitempty"`
	FlightNo            string `json:"flightNo"`
	DepartureFlightNo   string `json:"depFlightNo,omitempty"`
	TravelModeKey       string `json:"tranModeId"`
	TransportModeKey    string `json:"flightVehicleId"`
	DepTransportModeKey string `json:"depFlightVehicleId,omitempty"`
	PurposeKey          string `json:"purposeId"`
	CountryBoardedKey   string `json:"countryBoardedId"`
	StateResidenceKey   string `json:"stateResidenceId"`
	CityOfResidence     string `json:"cityResidence,omitempty"`
	AccommodationKey    string `json:"accomTypeId"`
	ProvinceKey         string `json:"provinceId"`
	DistrictKey         string `json:"districtId,omitempty"`
	SubDistrictKey      string `json:"subDistrictId,omitempty"`
	PostCode            string `json:"postCode,omitempty"`
	Address             string `json:"address"`
}

// HealthInfo is the health-declaration section; the service only wants
// an affirmative flag and the visited-country list when present.
type HealthInfo struct {
	Declaration      string `json:"ddcDeclaration"`
	VisitedCountries string `json:"ddcCountryCodes,omitempty"`
}

// Window is the arrival-date submission policy.
type Window struct {
	// MaxLead is the furthest ahead of arrival a submission is accepted.
	MaxLead time.Duration
	// Grace is how far past the arrival date a submission is still sent.
	Grace time.Duration
}

var wireDateShape = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)

// Build assembles and validates the step-5 form. now is injected so the
// arrival-window boundary is testable. Any returned error is a
// *types.ValidationError; nothing here touches the network.
func Build(req *types.TravelerRequest, st *session.State, win Window, now time.Time) (*Form, error) {
	birthDate, err := types.NormalizeDate(req.BirthDate)
	if err != nil {
		return nil, &types.ValidationError{Field: "birth_date", Reason: err.Error()}
	}
	arrDate, err := types.NormalizeDate(req.ArrivalDate)
	if err != nil {
		return nil, &types.ValidationError{Field: "arrival_date", Reason: err.Error()}
	}
	var depDate string
	if strings.TrimSpace(req.DepartureDate) != "" {
		if depDate, err = types.NormalizeDate(req.DepartureDate); err != nil {
			return nil, &types.ValidationError{Field: "departure_date", Reason: err.Error()}
		}
	}

	if err := checkArrivalWindow(arrDate, win, now); err != nil {
		return nil, err
	}

	gender, _ := st.ResolvedRow(types.CategoryGender)
	if gender.Code == "" || strings.EqualFold(gender.Code, "UNDEFINED") {
		// The service rejects an undefined gender; failing here is a
		// hard validation error, never a silent submit.
		return nil, &types.ValidationError{Field: "gender", Reason: "gender did not resolve to a usable code"}
	}

	key := func(cat types.Category) string {
		row, _ := st.ResolvedRow(cat)
		return row.Key
	}
	transportKey := key(types.CategoryTransportMode)

	form := &Form{
		Personal: PersonalInfo{
			FamilyName:     strings.ToUpper(strings.TrimSpace(req.FamilyName)),
			FirstName:      strings.ToUpper(strings.TrimSpace(req.FirstName)),
			MiddleName:     strings.ToUpper(strings.TrimSpace(req.MiddleName)),
			PassportNo:     strings.ToUpper(strings.TrimSpace(req.PassportNo)),
			NationalityKey: key(types.CategoryNationality),
			GenderCode:     gender.Code,
			BirthDate:      birthDate,
			Occupation:     strings.ToUpper(strings.TrimSpace(req.Occupation)),
			PhoneCode:      strings.TrimSpace(req.PhoneCode),
			PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
			Email:          strings.TrimSpace(req.Email),
		},
		Trip: TripInfo{
			ArrivalDate:       arrDate,
			DepartureDate:     depDate,
			FlightNo:          strings.ToUpper(strings.TrimSpace(req.FlightNo)),
			TravelModeKey:     key(types.CategoryTravelMode),
			TransportModeKey:  transportKey,
			PurposeKey:        key(types.CategoryPurpose),
			CountryBoardedKey: key(types.CategoryCountry),
			StateResidenceKey: key(types.CategoryStateOfResidence),
			CityOfResidence:   strings.ToUpper(strings.TrimSpace(req.CityOfResidence)),
			AccommodationKey:  key(types.CategoryAccommodationType),
			ProvinceKey:       key(types.CategoryProvince),
			DistrictKey:       key(types.CategoryDistrict),
			SubDistrictKey:    key(types.CategorySubDistrict),
			Address:           strings.ToUpper(strings.TrimSpace(req.Address)),
		},
		Health: HealthInfo{
			Declaration: "Y",
		},
	}

	// Departure leg is sent only when a departure flight exists, and its
	// transport key is always the session-resolved arrival key.
	if strings.TrimSpace(req.DepartureFlightNo) != "" {
		form.Trip.DepartureFlightNo = strings.ToUpper(strings.TrimSpace(req.DepartureFlightNo))
		form.Trip.DepTransportModeKey = transportKey
	}

	hotel := false
	if row, ok := st.ResolvedRow(types.CategoryAccommodationType); ok {
		hotel = row.IsHotel()
	}
	if !hotel {
		form.Trip.PostCode = strings.TrimSpace(req.PostCode)
	} else {
		form.Trip.DistrictKey = ""
		form.Trip.SubDistrictKey = ""
	}

	if err := validate(form, hotel); err != nil {
		return nil, err
	}
	return form, nil
}

// checkArrivalWindow enforces the submission window. A date exactly at
// the boundary is accepted; the failure message states the window so the
// caller can surface it directly.
func checkArrivalWindow(arrDate string, win Window, now time.Time) error {
	arr, err := time.Parse(types.WireDateLayout, arrDate)
	if err != nil {
		return &types.ValidationError{Field: "arrival_date", Reason: err.Error()}
	}
	until := arr.Sub(now)
	if until > win.MaxLead {
		days := int(until.Hours() / 24)
		return &types.ValidationError{
			Field: "arrival_date",
			Reason: fmt.Sprintf("arrival is %d days away; submissions open %d hours before arrival",
				days, int(win.MaxLead.Hours())),
		}
	}
	if until < -win.Grace {
		return &types.ValidationError{
			Field: "arrival_date",
			Reason: fmt.Sprintf("arrival date is more than %d hours in the past",
				int(win.Grace.Hours())),
		}
	}
	return nil
}

// requiredLeaf is one non-blank leaf check of the structural pass.
type requiredLeaf struct {
	name  string
	value string
}

// validate is the structural pass: required sections populated, required
// leaves non-blank, arrival date in wire shape.
func validate(f *Form, hotel bool) error {
	leaves := []requiredLeaf{
		{"personalInfo.familyName", f.Personal.FamilyName},
		{"personalInfo.firstName", f.Personal.FirstName},
		{"personalInfo.passportNo", f.Personal.PassportNo},
		{"personalInfo.nationalityId", f.Personal.NationalityKey},
		{"personalInfo.gender", f.Personal.GenderCode},
		{"personalInfo.birthDate", f.Personal.BirthDate},
		{"personalInfo.occupation", f.Personal.Occupation},
		{"personalInfo.phoneCode", f.Personal.PhoneCode},
		{"personalInfo.phoneNo", f.Personal.PhoneNumber},
		{"personalInfo.email", f.Personal.Email},
		{"tripInfo.arrDate", f.Trip.ArrivalDate},
		{"tripInfo.flightNo", f.Trip.FlightNo},
		{"tripInfo.tranModeId", f.Trip.TravelModeKey},
		{"tripInfo.flightVehicleId", f.Trip.TransportModeKey},
		{"tripInfo.purposeId", f.Trip.PurposeKey},
		{"tripInfo.countryBoardedId", f.Trip.CountryBoardedKey},
		{"tripInfo.stateResidenceId", f.Trip.StateResidenceKey},
		{"tripInfo.accomTypeId", f.Trip.AccommodationKey},
		{"tripInfo.provinceId", f.Trip.ProvinceKey},
		{"tripInfo.address", f.Trip.Address},
		{"healthInfo.ddcDeclaration", f.Health.Declaration},
	}
	if !hotel {
		leaves = append(leaves,
			requiredLeaf{"tripInfo.districtId", f.Trip.DistrictKey},
			requiredLeaf{"tripInfo.subDistrictId", f.Trip.SubDistrictKey},
		)
	}
	for _, leaf := range leaves {
		if strings.TrimSpace(leaf.value) == "" {
			return &types.ValidationError{Field: leaf.name, Reason: "required field is empty"}
		}
	}
	if !wireDateShape.MatchString(f.Trip.ArrivalDate) {
		return &types.ValidationError{Field: "tripInfo.arrDate", Reason: "arrival date must be YYYY/MM/DD"}
	}
	return nil
}
