package refdata

import "arrivalcard/internal/types"

// staticFallbacks are last-resort option lists for the seeded categories,
// consulted only when the gotoAdd session cache lacks an entry. Any hit
// is logged at Warn: the server owns these vocabularies and this table
// can go stale without notice.
var staticFallbacks = map[types.Category][]types.ReferenceRow{
	types.CategoryGender: {
		{Key: "M", Value: "MALE", Code: "M"},
		{Key: "F", Value: "FEMALE", Code: "F"},
	},
	types.CategoryTravelMode: {
		{Key: "AIR", Value: "AIR", Code: "AIR"},
		{Key: "LAND", Value: "LAND", Code: "LAND"},
		{Key: "SEA", Value: "SEA", Code: "SEA"},
	},
	types.CategoryAccommodationType: {
		{Key: "HOTEL", Value: "HOTEL", Code: "HOTEL"},
		{Key: "HOSTEL", Value: "HOSTEL", Code: "HOSTEL"},
		{Key: "GUEST_HOUSE", Value: "GUEST HOUSE", Code: "GUEST_HOUSE"},
		{Key: "APARTMENT", Value: "APARTMENT", Code: "APARTMENT"},
		{Key: "FRIEND_HOUSE", Value: "FRIEND'S HOUSE", Code: "FRIEND_HOUSE"},
		{Key: "OTHERS", Value: "OTHERS", Code: "OTHERS"},
	},
	types.CategoryPurpose: {
		{Key: "HOLIDAY", Value: "HOLIDAY", Code: "HOLIDAY"},
		{Key: "BUSINESS", Value: "BUSINESS", Code: "BUSINESS"},
		{Key: "MEETING", Value: "MEETING", Code: "MEETING"},
		{Key: "TRANSIT", Value: "TRANSIT", Code: "TRANSIT"},
		{Key: "EDUCATION", Value: "EDUCATION", Code: "EDUCATION"},
		{Key: "EMPLOYMENT", Value: "EMPLOYMENT", Code: "EMPLOYMENT"},
		{Key: "MEDICAL", Value: "MEDICAL TREATMENT", Code: "MEDICAL"},
		{Key: "OTHERS", Value: "OTHERS", Code: "OTHERS"},
	},
}

// fallbackAllowed lists the categories where an unmatched input may fall
// back to the first server row. Legally meaningful fields (nationality,
// residence, the address hierarchy, gender) are deliberately absent: a
// wrong guess there is worse than a failed submission.
var fallbackAllowed = map[types.Category]bool{
	types.CategoryTransportMode: true,
	types.CategoryPurpose:       true,
}
