package geo

import "math"

// Box is an axis-aligned latitude/longitude range. It is only ever a coarse
// pre-filter; callers re-check candidates with Distance.
type Box struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// BoundingBox returns the box spanning ±degrees around origin. Latitude is
// clamped to the poles. Longitude is left unclamped so a box near the
// antimeridian still covers the same numeric span on the near side.
func BoundingBox(origin Coordinates, degrees float64) Box {
	return Box{
		MinLatitude:  math.Max(origin.Latitude-degrees, -90),
		MaxLatitude:  math.Min(origin.Latitude+degrees, 90),
		MinLongitude: origin.Longitude - degrees,
		MaxLongitude: origin.Longitude + degrees,
	}
}

// Contains reports whether c falls inside the box, bounds inclusive.
func (b Box) Contains(c Coordinates) bool {
	return c.Latitude >= b.MinLatitude && c.Latitude <= b.MaxLatitude &&
		c.Longitude >= b.MinLongitude && c.Longitude <= b.MaxLongitude
}
