package cache

import (
	"os"

	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	log "github.com/sirupsen/logrus"
)

// SummaryStore memoizes band summaries on disk. Keys include the modification
// times of the band, quality band and metadata files, so rewriting any of them
// summarizes the band again.
type SummaryStore struct {
	cache CacheService[landsat.BandSummary]
}

func NewSummaryStore(c CacheService[landsat.BandSummary]) *SummaryStore {
	return &SummaryStore{cache: c}
}

// Summary returns the cached summary of the band's reflectance, computing and
// storing it when absent.
func (s *SummaryStore) Summary(scene landsat.Scene, band int, opts landsat.ReflectanceOptions) (landsat.BandSummary, error) {
	info, err := os.Stat(scene.BandPath(band))
	if err != nil {
		return landsat.BandSummary{}, &raster.NotFoundError{Path: scene.BandPath(band), Err: err}
	}
	policy := opts.Policy
	if policy == nil {
		policy = landsat.DefaultMaskPolicy
	}
	key := s.cache.GenerateKey(scene.Base(), band, windowKey(opts.Window), opts.SkipCloudFilter, policy.String(),
		info.ModTime().UnixNano(), modTime(scene.QualityPath()), modTime(scene.MetadataPath()))
	if summary, ok := s.cache.Get(key); ok {
		return summary, nil
	}

	md, err := scene.Metadata()
	if err != nil {
		return landsat.BandSummary{}, err
	}
	grid, err := scene.ReflectanceWith(md, band, opts)
	if err != nil {
		return landsat.BandSummary{}, err
	}
	summary, err := landsat.Summarize(scene.ID, band, grid)
	if err != nil {
		return landsat.BandSummary{}, err
	}
	if doy, err := md.DayOfYear(); err == nil {
		summary.DayOfYear = doy
	}

	if err := s.cache.Set(key, summary); err != nil {
		log.WithField("scene", scene.ID).Warnf("failed to cache band %d summary: %v", band, err)
	}
	return summary, nil
}

// modTime is 0 for a missing file; reading the scene reports that error.
func modTime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}

func windowKey(w *raster.Window) string {
	if w == nil {
		return "full"
	}
	return w.String()
}
