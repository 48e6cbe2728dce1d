package model

import "math"

// WorksiteBoundary is a rectangular latitude/longitude region mapped to a
// customer or jobsite name.  Rows are reference data maintained outside of
// this service.
//
// Longitudes for western-hemisphere sites were historically entered with
// min and max swapped, so MinLon may be greater than MaxLon.  Contains
// accepts either ordering.
//
// Fields:
//  ID     – primary key identifier.
//  Name   – customer / worksite name reported to the client.
//  MinLat – southern edge (inclusive).
//  MaxLat – northern edge (inclusive).
//  MinLon – one longitude edge (inclusive).
//  MaxLon – the other longitude edge (inclusive).
type WorksiteBoundary struct {
    ID     uint64  `json:"id"`            // worksite_boundaries.id
    Name   string  `json:"name"`          // worksite_boundaries.customer_name
    MinLat float64 `json:"min_latitude"`  // worksite_boundaries.min_latitude
    MaxLat float64 `json:"max_latitude"`  // worksite_boundaries.max_latitude
    MinLon float64 `json:"min_longitude"` // worksite_boundaries.min_longitude
    MaxLon float64 `json:"max_longitude"` // worksite_boundaries.max_longitude
}

// Contains reports whether the point lies inside the boundary.  Edges are
// inclusive.
func (b WorksiteBoundary) Contains(lat, lon float64) bool {
    if lat < b.MinLat || lat > b.MaxLat {
        return false
    }
    lo, hi := b.MinLon, b.MaxLon
    if lo > hi {
        lo, hi = hi, lo
    }
    return lon >= lo && lon <= hi
}

// Area returns the size of the rectangle in square degrees.  It is only
// meaningful for comparing boundaries with each other.
func (b WorksiteBoundary) Area() float64 {
    return math.Abs(b.MaxLat-b.MinLat) * math.Abs(b.MaxLon-b.MinLon)
}
