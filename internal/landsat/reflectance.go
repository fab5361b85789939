package landsat

import (
	"fmt"
	"math"

	"github.com/forest-guardian/landsat-toa/internal/raster"
)

const (
	sunElevationKey = "SUN_ELEVATION"
	multKeyPattern  = "REFLECTANCE_MULT_BAND_%d"
	addKeyPattern   = "REFLECTANCE_ADD_BAND_%d"
)

// ReflectanceParams are the per-band rescaling factors and the scene sun elevation
// (degrees) used for the DN to TOA reflectance conversion.
type ReflectanceParams struct {
	Band         int
	Mult         float64
	Add          float64
	SunElevation float64
}

// ReflectanceParametersFor looks up the rescaling factors of band in md.
func ReflectanceParametersFor(md Metadata, band int) (ReflectanceParams, error) {
	p := ReflectanceParams{Band: band}
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{fmt.Sprintf(multKeyPattern, band), &p.Mult},
		{fmt.Sprintf(addKeyPattern, band), &p.Add},
		{sunElevationKey, &p.SunElevation},
	} {
		v, err := md.Float(f.key)
		if err != nil {
			if _, ok := err.(*MissingParameterError); ok {
				return ReflectanceParams{}, &MissingParameterError{Key: f.key, Band: band}
			}
			return ReflectanceParams{}, err
		}
		*f.dst = v
	}
	return p, nil
}

// Coefficients returns a, b such that reflectance(dn) = a*dn + b.
func (p ReflectanceParams) Coefficients() (a, b float64) {
	s := math.Sin(p.SunElevation * math.Pi / 180)
	return p.Mult / s, p.Add / s
}

// Apply converts a single digital number.
func (p ReflectanceParams) Apply(dn float64) float64 {
	s := math.Sin(p.SunElevation * math.Pi / 180)
	return (p.Mult*dn + p.Add) / s
}

// ToReflectance converts a DN grid to TOA reflectance. NaN cells stay NaN and no
// clamping to [0, 1] is done.
func ToReflectance(dn raster.Grid, p ReflectanceParams) raster.Grid {
	return dn.Map(p.Apply)
}

// ConvertToReflectance reads the band's parameters from md and converts dn.
func ConvertToReflectance(dn raster.Grid, md Metadata, band int) (raster.Grid, error) {
	p, err := ReflectanceParametersFor(md, band)
	if err != nil {
		return raster.Grid{}, err
	}
	return ToReflectance(dn, p), nil
}

// ReflectanceOptions controls Scene.Reflectance.
type ReflectanceOptions struct {
	Window *raster.Window
	// SkipCloudFilter disables BQA masking.
	SkipCloudFilter bool
	Policy          MaskPolicy
}

// Reflectance reads band, masks no-data and (unless disabled) cloudy pixels, then
// converts to TOA reflectance.
func (s Scene) Reflectance(band int, opts ReflectanceOptions) (raster.Grid, error) {
	md, err := s.Metadata()
	if err != nil {
		return raster.Grid{}, err
	}
	return s.ReflectanceWith(md, band, opts)
}

// ReflectanceWith is Reflectance with an already loaded metadata table.
func (s Scene) ReflectanceWith(md Metadata, band int, opts ReflectanceOptions) (raster.Grid, error) {
	p, err := ReflectanceParametersFor(md, band)
	if err != nil {
		return raster.Grid{}, err
	}
	dn, err := s.ReadBand(band, opts.Window)
	if err != nil {
		return raster.Grid{}, err
	}
	if !opts.SkipCloudFilter {
		dn, err = s.CloudFilter(dn, opts.Window, opts.Policy)
		if err != nil {
			return raster.Grid{}, err
		}
	}
	return ToReflectance(dn, p), nil
}
