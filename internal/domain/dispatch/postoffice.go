package dispatch

import (
	"math"

	"github.com/vietcart/logistics/internal/domain/shared"
)

// OfficeType separates neighborhood offices from regional transit hubs.
type OfficeType string

const (
	OfficeLocal    OfficeType = "local"
	OfficeRegional OfficeType = "regional"
)

// PostOffice is a node in the in-house delivery network. Regional offices
// act as hubs when a parcel crosses regions; ParentID points a local
// office at its hub.
type PostOffice struct {
	ID       string
	Code     string
	Type     OfficeType
	City     string
	District string
	Region   shared.Region
	Lat      float64
	Lng      float64
	ParentID string
}

// earthRadiusKm for the haversine distance below.
const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance from the office to a point.
func (p *PostOffice) DistanceKm(lat, lng float64) float64 {
	return haversineKm(p.Lat, p.Lng, lat, lng)
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// NearestLocal picks the closest local office to a point, preferring
// offices in the same region when any exist.
func NearestLocal(offices []*PostOffice, region shared.Region, lat, lng float64) *PostOffice {
	var best *PostOffice
	bestDist := math.MaxFloat64
	sameRegion := false
	for _, o := range offices {
		if o.Type != OfficeLocal {
			continue
		}
		inRegion := o.Region == region
		if sameRegion && !inRegion {
			continue
		}
		d := o.DistanceKm(lat, lng)
		if (inRegion && !sameRegion) || d < bestDist {
			best = o
			bestDist = d
			sameRegion = inRegion
		}
	}
	return best
}
