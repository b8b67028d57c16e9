package payload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrivalcard/internal/session"
	"arrivalcard/internal/types"
)

var testWindow = Window{
	MaxLead: 72 * time.Hour,
	Grace:   24 * time.Hour,
}

func resolvedState(t *testing.T) *session.State {
	t.Helper()
	st := session.New("verify-token-123")
	for cat, row := range map[types.Category]types.ReferenceRow{
		types.CategoryGender:            {Key: "F", Value: "FEMALE", Code: "F"},
		types.CategoryTravelMode:        {Key: "AIR", Value: "AIR", Code: "AIR"},
		types.CategoryAccommodationType: {Key: "GUEST_HOUSE", Value: "GUEST HOUSE"},
		types.CategoryPurpose:           {Key: "HOLIDAY", Value: "HOLIDAY"},
		types.CategoryNationality:       {Key: "nat-840", Value: "AMERICAN", Code: "USA"},
		types.CategoryCountry:           {Key: "cty-840", Value: "UNITED STATES OF AMERICA"},
		types.CategoryStateOfResidence:  {Key: "st-ca", Value: "CALIFORNIA"},
		types.CategoryProvince:          {Key: "pv-10", Value: "BANGKOK", Code: "10"},
		types.CategoryDistrict:          {Key: "dt-1003", Value: "BANG RAK"},
		types.CategorySubDistrict:       {Key: "sd-100502", Value: "SI LOM"},
		types.CategoryTransportMode:     {Key: "tm-1", Value: "COMMERCIAL FLIGHT"},
	} {
		st.Resolve(cat, row)
	}
	return st
}

func buildRequest() *types.TravelerRequest {
	return &types.TravelerRequest{
		FamilyName:        "doe",
		FirstName:         "jane",
		PassportNo:        "x1234567",
		Nationality:       "USA",
		BirthDate:         "1990-04-12",
		Gender:            "Female",
		Occupation:        "engineer",
		Email:             "jane@example.com",
		PhoneCode:         "1",
		PhoneNumber:       "5551234567",
		ArrivalDate:       "2026-09-02",
		DepartureDate:     "05/09/2026",
		FlightNo:          "tg911",
		DepartureFlightNo: "tg910",
		TransportMode:     "Commercial Flight",
		TravelMode:        "Air",
		Purpose:           "Holiday",
		CountryOfBoarding: "United States",
		StateOfResidence:  "California",
		AccommodationType: "Guest House",
		Province:          "Bangkok",
		District:          "Bang Rak",
		SubDistrict:       "Si Lom",
		PostCode:          "10500",
		Address:           "123 example road",
		VerificationToken: "verify-token-123",
	}
}

// now is inside the window for the fixture arrival date.
var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func TestBuildAssemblesForm(t *testing.T) {
	form, err := Build(buildRequest(), resolvedState(t), testWindow, testNow)
	require.NoError(t, err)

	assert.Equal(t, "DOE", form.Personal.FamilyName)
	assert.Equal(t, "JANE", form.Personal.FirstName)
	assert.Equal(t, "X1234567", form.Personal.PassportNo)
	assert.Equal(t, "nat-840", form.Personal.NationalityKey)
	assert.Equal(t, "F", form.Personal.GenderCode)
	assert.Equal(t, "1990/04/12", form.Personal.BirthDate)

	assert.Equal(t, "2026/09/02", form.Trip.ArrivalDate)
	assert.Equal(t, "2026/09/05", form.Trip.DepartureDate)
	assert.Equal(t, "TG911", form.Trip.FlightNo)
	assert.Equal(t, "pv-10", form.Trip.ProvinceKey)
	assert.Equal(t, "dt-1003", form.Trip.DistrictKey)
	assert.Equal(t, "10500", form.Trip.PostCode)
	assert.Equal(t, "123 EXAMPLE ROAD", form.Trip.Address)
	assert.Equal(t, "Y", form.Health.Declaration)
}

func TestDepartureLegSharesTransportRow(t *testing.T) {
	t.Run("departure flight present", func(t *testing.T) {
		form, err := Build(buildRequest(), resolvedState(t), testWindow, testNow)
		require.NoError(t, err)
		assert.Equal(t, "TG910", form.Trip.DepartureFlightNo)
		// Both legs carry the one session-resolved transport key.
		assert.Equal(t, form.Trip.TransportModeKey, form.Trip.DepTransportModeKey)
		assert.Equal(t, "tm-1", form.Trip.DepTransportModeKey)
	})

	t.Run("no departure flight, leg omitted entirely", func(t *testing.T) {
		req := buildRequest()
		req.DepartureFlightNo = ""
		form, err := Build(req, resolvedState(t), testWindow, testNow)
		require.NoError(t, err)
		assert.Empty(t, form.Trip.DepartureFlightNo)
		assert.Empty(t, form.Trip.DepTransportModeKey)
	})
}

func TestArrivalWindow(t *testing.T) {
	// Fixture arrival 2026/09/02 parses to midnight UTC.
	arrival := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	t.Run("exactly at the lead boundary accepted", func(t *testing.T) {
		now := arrival.Add(-testWindow.MaxLead)
		_, err := Build(buildRequest(), resolvedState(t), testWindow, now)
		assert.NoError(t, err)
	})

	t.Run("one hour beyond the boundary rejected with the window", func(t *testing.T) {
		now := arrival.Add(-testWindow.MaxLead - time.Hour)
		_, err := Build(buildRequest(), resolvedState(t), testWindow, now)

		var vErr *types.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "arrival_date", vErr.Field)
		assert.Contains(t, vErr.Reason, "submissions open 72 hours before arrival")
		assert.Contains(t, vErr.Reason, "days away")
	})

	t.Run("within grace period accepted", func(t *testing.T) {
		now := arrival.Add(23 * time.Hour)
		_, err := Build(buildRequest(), resolvedState(t), testWindow, now)
		assert.NoError(t, err)
	})

	t.Run("beyond grace period rejected", func(t *testing.T) {
		now := arrival.Add(25 * time.Hour)
		_, err := Build(buildRequest(), resolvedState(t), testWindow, now)

		var vErr *types.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Reason, "in the past")
	})
}

func TestUndefinedGenderRejected(t *testing.T) {
	tests := []struct {
		name string
		row  types.ReferenceRow
	}{
		{"empty code", types.ReferenceRow{Key: "U", Value: "UNKNOWN"}},
		{"undefined code", types.ReferenceRow{Key: "U", Value: "UNDEFINED", Code: "UNDEFINED"}},
		{"unresolved", types.ReferenceRow{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := resolvedState(t)
			st.Resolve(types.CategoryGender, tt.row)

			_, err := Build(buildRequest(), st, testWindow, testNow)
			var vErr *types.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "gender", vErr.Field)
		})
	}
}

func TestHotelOmitsDistrictFields(t *testing.T) {
	st := resolvedState(t)
	st.Resolve(types.CategoryAccommodationType, types.ReferenceRow{Key: "HOTEL", Value: "HOTEL"})

	req := buildRequest()
	req.District = ""
	req.SubDistrict = ""
	req.PostCode = ""

	form, err := Build(req, st, testWindow, testNow)
	require.NoError(t, err)
	assert.Empty(t, form.Trip.DistrictKey)
	assert.Empty(t, form.Trip.SubDistrictKey)
	assert.Empty(t, form.Trip.PostCode)
}

func TestStructuralValidation(t *testing.T) {
	t.Run("missing resolved province aborts", func(t *testing.T) {
		st := resolvedState(t)
		st.Resolve(types.CategoryProvince, types.ReferenceRow{})

		_, err := Build(buildRequest(), st, testWindow, testNow)
		var vErr *types.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "tripInfo.provinceId", vErr.Field)
	})

	t.Run("bad date shape names the field", func(t *testing.T) {
		req := buildRequest()
		req.ArrivalDate = "2026.09.02"
		_, err := Build(req, resolvedState(t), testWindow, testNow)

		var vErr *types.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "arrival_date", vErr.Field)
	})
}
