package landsat

import (
	"fmt"
	"path/filepath"

	"github.com/forest-guardian/landsat-toa/internal/raster"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultBandSuffixPattern = "_B%d.TIF"
	DefaultQualitySuffix     = "_BQA.TIF"
	DefaultMetadataSuffix    = "_MTL.TXT"
)

// Naming describes where the files of a scene live. Each scene is a base path
// (SceneRoot joined with the scene ID) followed by a per-file suffix.
type Naming struct {
	SceneRoot         string
	BandSuffixPattern string
	QualitySuffix     string
	MetadataSuffix    string
}

// DefaultNaming is the Collection 1 convention: P_B<n>.TIF, P_BQA.TIF, P_MTL.TXT.
func DefaultNaming(sceneRoot string) Naming {
	return Naming{
		SceneRoot:         sceneRoot,
		BandSuffixPattern: DefaultBandSuffixPattern,
		QualitySuffix:     DefaultQualitySuffix,
		MetadataSuffix:    DefaultMetadataSuffix,
	}
}

// Scene returns the scene with the given identifier under this naming.
func (n Naming) Scene(id string) Scene {
	return Scene{ID: id, Naming: n}
}

// Scene is a family of per-band rasters, one quality raster and one metadata file
// sharing a base path.
type Scene struct {
	ID     string
	Naming Naming
}

// Base is the path every scene file name is derived from.
func (s Scene) Base() string {
	if s.Naming.SceneRoot == "" {
		return s.ID
	}
	return filepath.Join(s.Naming.SceneRoot, s.ID)
}

func (s Scene) BandPath(band int) string {
	pattern := s.Naming.BandSuffixPattern
	if pattern == "" {
		pattern = DefaultBandSuffixPattern
	}
	return s.Base() + fmt.Sprintf(pattern, band)
}

func (s Scene) QualityPath() string {
	suffix := s.Naming.QualitySuffix
	if suffix == "" {
		suffix = DefaultQualitySuffix
	}
	return s.Base() + suffix
}

func (s Scene) MetadataPath() string {
	suffix := s.Naming.MetadataSuffix
	if suffix == "" {
		suffix = DefaultMetadataSuffix
	}
	return s.Base() + suffix
}

// Metadata loads the scene's MTL table. Each call reads the file again.
func (s Scene) Metadata() (Metadata, error) {
	return LoadMetadata(s.MetadataPath())
}

// ReadBand reads band n as digital numbers. Cells equal to zero are no-data and
// come back as NaN.
func (s Scene) ReadBand(band int, window *raster.Window) (raster.Grid, error) {
	path := s.BandPath(band)
	grid, err := raster.ReadBand(path, window)
	if err != nil {
		return raster.Grid{}, err
	}
	log.WithFields(log.Fields{"scene": s.ID, "band": band, "path": path}).
		Debugf("read %dx%d band", grid.Rows, grid.Cols)
	return MaskNoData(grid), nil
}

// MaskNoData returns a copy of dn with every zero cell set to NaN.
func MaskNoData(dn raster.Grid) raster.Grid {
	return dn.MaskWhere(func(_ int, v float64) bool { return v == 0 })
}

// SpatialRef returns the geotransform and projection of band n, for writing
// derived products with the same footprint.
func (s Scene) SpatialRef(band int) (raster.SpatialRef, error) {
	return raster.ReadSpatialRef(s.BandPath(band))
}
