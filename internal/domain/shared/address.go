package shared

import "strings"

// Region is the administrative macro-region used for hub routing.
type Region string

const (
	RegionNorth   Region = "north"
	RegionCentral Region = "central"
	RegionSouth   Region = "south"
)

// ParseRegion normalizes a region token; unknown tokens return false.
func ParseRegion(s string) (Region, bool) {
	switch Region(strings.ToLower(strings.TrimSpace(s))) {
	case RegionNorth:
		return RegionNorth, true
	case RegionCentral:
		return RegionCentral, true
	case RegionSouth:
		return RegionSouth, true
	}
	return "", false
}

// Address is the snapshot shape used on orders and shipments. Orders copy
// it at checkout so later edits to the customer's address book do not
// rewrite history.
type Address struct {
	Line     string
	Ward     string
	District string
	City     string
	Region   Region
	Lat      float64
	Lng      float64
}

// Contact is the person attached to a pickup or delivery address.
type Contact struct {
	Name  string
	Phone string
}

// RouteKey collapses an address to the city-district granularity the fee
// cache distinguishes.
func (a Address) RouteKey() string {
	return strings.ToLower(a.City) + "-" + strings.ToLower(a.District)
}
