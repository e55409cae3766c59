package models

import "slices"

type FilterKey string

const (
	KeyLocationType FilterKey = "lt"
	KeySubtype      FilterKey = "st"
	KeyPriceRange   FilterKey = "pr"
	KeyParking      FilterKey = "pk"
	KeyMyLocations  FilterKey = "ml"
)

func (v *FilterValues) AddLocationType(id int) {
	if !slices.Contains(v.LocationTypes, id) {
		v.LocationTypes = append(v.LocationTypes, id)
	}
}

func (v *FilterValues) AddSubtype(id int) {
	if !slices.Contains(v.Subtypes, id) {
		v.Subtypes = append(v.Subtypes, id)
	}
}

func (v *FilterValues) AddParking(value string) {
	if !slices.Contains(v.Parking, value) {
		v.Parking = append(v.Parking, value)
	}
}

func (v *FilterValues) SetMyLocations() {
	v.MyLocations = []int{MyLocationsID}
}

// SetPriceRange keeps the first range set on v and orders the bounds.
func (v *FilterValues) SetPriceRange(from, to int) {
	if len(v.PriceRange) != 0 {
		return
	}
	if from > to {
		from, to = to, from
	}

	v.PriceRange = []int{from, to}
}
