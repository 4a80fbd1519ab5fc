// Package geo computes distances between points on the WGS-84 ellipsoid.
package geo

import (
	"math"

	"github.com/bbernstein/dockfinder/backend-go/internal/models"
)

const (
	semiMajorAxis = 6378137.0         // WGS-84 a, meters
	flattening    = 1 / 298.257223563 // WGS-84 f
	semiMinorAxis = (1 - flattening) * semiMajorAxis

	meanEarthRadiusKm = 6371.0088

	maxIterations = 200
	convergence   = 1e-12
)

// Validate reports an InvalidCoordinateError for points outside lat [-90,90], lon [-180,180]
func Validate(p models.Coordinate) error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return NewInvalidCoordinateError("latitude must be within [-90, 90]", p.Lat, p.Lon)
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return NewInvalidCoordinateError("longitude must be within [-180, 180]", p.Lat, p.Lon)
	}
	return nil
}

// DistanceKm returns the geodesic distance between two points in kilometers using
// Vincenty's inverse formula. Nearly antipodal points, where the iteration does not
// converge, fall back to the great-circle distance on the mean sphere.
func DistanceKm(p1, p2 models.Coordinate) (float64, error) {
	if err := Validate(p1); err != nil {
		return 0, err
	}
	if err := Validate(p2); err != nil {
		return 0, err
	}

	if meters, ok := vincenty(p1, p2); ok {
		return meters / 1000, nil
	}
	return haversineKm(p1, p2), nil
}

func vincenty(p1, p2 models.Coordinate) (float64, bool) {
	L := toRadians(p2.Lon - p1.Lon)
	U1 := math.Atan((1 - flattening) * math.Tan(toRadians(p1.Lat)))
	U2 := math.Atan((1 - flattening) * math.Tan(toRadians(p2.Lat)))
	sinU1, cosU1 := math.Sincos(U1)
	sinU2, cosU2 := math.Sincos(U2)

	lambda := L
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	converged := false

	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Sqrt(math.Pow(cosU2*sinLambda, 2) +
			math.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2))
		if sinSigma == 0 {
			return 0, true // coincident points
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			cos2SigmaM = 0 // equatorial line
		}
		C := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
		prev := lambda
		lambda = L + (1-C)*flattening*sinAlpha*
			(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) < convergence {
			converged = true
			break
		}
	}
	if !converged {
		return 0, false
	}

	uSq := cosSqAlpha * (semiMajorAxis*semiMajorAxis - semiMinorAxis*semiMinorAxis) / (semiMinorAxis * semiMinorAxis)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	return semiMinorAxis * A * (sigma - deltaSigma), true
}

func haversineKm(p1, p2 models.Coordinate) float64 {
	dLat := toRadians(p2.Lat - p1.Lat)
	dLon := toRadians(p2.Lon - p1.Lon)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(p1.Lat))*math.Cos(toRadians(p2.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return meanEarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
