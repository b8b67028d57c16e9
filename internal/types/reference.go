package types

import "strings"

// Category identifies one lookup vocabulary on the remote service.
type Category string

const (
	// Live-query categories, fetched per session from the lookup endpoint.
	CategoryNationality      Category = "nationality"
	CategoryCountry          Category = "country"
	CategoryStateOfResidence Category = "state_of_residence"
	CategoryProvince         Category = "province"
	CategoryDistrict         Category = "district"
	CategorySubDistrict      Category = "sub_district"
	CategoryTransportMode    Category = "transport_mode"

	// Seeded categories, served by the gotoAdd step's small option lists.
	CategoryGender            Category = "gender"
	CategoryTravelMode        Category = "travel_mode"
	CategoryAccommodationType Category = "accommodation_type"
	CategoryPurpose           Category = "purpose"
)

// ReferenceRow is one server-supplied candidate for a categorical field.
// Key is the opaque value submitted back to the server; Value is the
// display label matched against traveler input; Code is an optional
// secondary identifier (ISO code, numeric id).
type ReferenceRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Code  string `json:"code,omitempty"`
}

// IsHotel reports whether the row denotes hotel accommodation. Hotels
// carry no district, sub-district or post code on the remote form; both
// the resolver's lookup skip and the payload's field omission key off
// this one predicate.
func (r ReferenceRow) IsHotel() bool {
	return strings.EqualFold(strings.TrimSpace(r.Key), "HOTEL") ||
		strings.EqualFold(strings.TrimSpace(r.Value), "HOTEL")
}
