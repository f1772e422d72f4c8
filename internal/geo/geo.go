// Package geo holds the spherical math behind the nearest parking area search.
package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters mean earth radius
const EarthRadiusMeters = 6371008.8

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Point geographic point in degrees
type Point struct {
	Lat float64
	Lng float64
}

// Validate checks that the point is a real location
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return fmt.Errorf("%w: not a number", ErrInvalidCoordinates)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range", ErrInvalidCoordinates, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude %f out of range", ErrInvalidCoordinates, p.Lng)
	}
	return nil
}

func (p Point) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lng)
}

// Distance great-circle distance in meters
func Distance(a, b Point) float64 {
	return a.latLng().Distance(b.latLng()).Radians() * EarthRadiusMeters
}

// Box latitude/longitude rectangle used as a coarse SQL prefilter.
// SplitLng is set when the box crosses the antimeridian: then matching longitudes are
// lng >= MinLng OR lng <= MaxLng. SkipLng disables the longitude condition (polar caps).
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
	SplitLng       bool
	SkipLng        bool
}

// BoundingBox returns a rectangle containing every point within radiusMeters of origin
func BoundingBox(origin Point, radiusMeters float64) Box {
	angle := s1.Angle(radiusMeters / EarthRadiusMeters)
	rect := s2.CapFromCenterAngle(s2.PointFromLatLng(origin.latLng()), angle).RectBound()

	box := Box{
		MinLat: rect.Lat.Lo * 180 / math.Pi,
		MaxLat: rect.Lat.Hi * 180 / math.Pi,
		MinLng: rect.Lng.Lo * 180 / math.Pi,
		MaxLng: rect.Lng.Hi * 180 / math.Pi,
	}
	switch {
	case rect.Lng.IsFull():
		box.SkipLng = true
	case rect.Lng.IsInverted():
		box.SplitLng = true
	}
	return box
}

// Located anything with a position
type Located interface {
	Position() Point
}

// Ranked item with its distance from the search origin
type Ranked[T Located] struct {
	Item           T
	DistanceMeters float64
}

// Nearby keeps items within radiusMeters of origin ordered by distance ascending.
// Equal distances keep the input order.
func Nearby[T Located](origin Point, radiusMeters float64, items []T) []Ranked[T] {
	result := make([]Ranked[T], 0, len(items))
	for _, item := range items {
		d := Distance(origin, item.Position())
		if d > radiusMeters {
			continue
		}
		result = append(result, Ranked[T]{Item: item, DistanceMeters: d})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DistanceMeters < result[j].DistanceMeters
	})
	return result
}
