package landsat

import (
	"fmt"
	"math"

	"github.com/forest-guardian/landsat-toa/internal/raster"
	log "github.com/sirupsen/logrus"
)

// BQA bit fields. Bits are numbered from the most significant bit of the 16-bit
// word, so "bits 0-1" are the two highest bits.
const (
	cloudShift  = 14
	cirrusShift = 12
	fieldMask   = 0b11

	CloudMask  uint16 = fieldMask << cloudShift
	CirrusMask uint16 = fieldMask << cirrusShift

	// MaxQAScore is the largest combined cloud + cirrus confidence.
	MaxQAScore = 2 * fieldMask
)

// Confidence is a 2-bit QA confidence level.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceNone:
		return "none"
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return fmt.Sprintf("Confidence(%d)", int(c))
	}
}

func CloudConfidenceOf(code uint16) Confidence {
	return Confidence((code >> cloudShift) & fieldMask)
}

func CirrusConfidenceOf(code uint16) Confidence {
	return Confidence((code >> cirrusShift) & fieldMask)
}

// QAScore is the sum of the cloud and cirrus confidences of a BQA code, in [0, 6].
func QAScore(code uint16) int {
	return int(CloudConfidenceOf(code)) + int(CirrusConfidenceOf(code))
}

// MaskPolicy decides whether a BQA code marks its pixel invalid.
type MaskPolicy interface {
	Masked(code uint16) bool
	String() string
}

// ScoreThreshold masks pixels whose combined cloud + cirrus score exceeds Max.
type ScoreThreshold struct {
	Max int
}

func (p ScoreThreshold) Masked(code uint16) bool {
	return QAScore(code) > p.Max
}

func (p ScoreThreshold) String() string {
	return fmt.Sprintf("score>%d", p.Max)
}

// CloudConfidence masks pixels whose 2-bit cloud confidence alone is at least Min.
// Cirrus is ignored. It is a separate policy from ScoreThreshold: the two scales
// are not equivalent.
type CloudConfidence struct {
	Min Confidence
}

func (p CloudConfidence) Masked(code uint16) bool {
	return CloudConfidenceOf(code) >= p.Min
}

func (p CloudConfidence) String() string {
	return fmt.Sprintf("cloud>=%s", p.Min)
}

// DefaultMaskPolicy masks pixels with a combined score above 2.
var DefaultMaskPolicy MaskPolicy = ScoreThreshold{Max: 2}

// QualityCodes holds the raw BQA codes of a scene.
type QualityCodes struct {
	Rows  int
	Cols  int
	Codes []uint16
}

func (q QualityCodes) Shape() [2]int {
	return [2]int{q.Rows, q.Cols}
}

// Scores decodes every code into its combined cloud + cirrus score.
func (q QualityCodes) Scores() raster.IntGrid {
	out := raster.IntGrid{Rows: q.Rows, Cols: q.Cols, Data: make([]int, len(q.Codes))}
	for i, c := range q.Codes {
		out.Data[i] = QAScore(c)
	}
	return out
}

// ReadQuality loads the BQA raster of the scene.
func (s Scene) ReadQuality(window *raster.Window) (QualityCodes, error) {
	rows, cols, codes, err := raster.ReadCodes(s.QualityPath(), window)
	if err != nil {
		return QualityCodes{}, err
	}
	return QualityCodes{Rows: rows, Cols: cols, Codes: codes}, nil
}

// QualityScores loads the BQA raster and returns the score grid.
func (s Scene) QualityScores(window *raster.Window) (raster.IntGrid, error) {
	q, err := s.ReadQuality(window)
	if err != nil {
		return raster.IntGrid{}, err
	}
	return q.Scores(), nil
}

// CloudFilter returns a copy of grid with every pixel the policy masks set to NaN.
func CloudFilter(grid raster.Grid, quality QualityCodes, policy MaskPolicy) (raster.Grid, error) {
	if grid.Rows != quality.Rows || grid.Cols != quality.Cols {
		return raster.Grid{}, &raster.ShapeMismatchError{Op: "cloud filter", Left: grid.Shape(), Right: quality.Shape()}
	}
	if policy == nil {
		policy = DefaultMaskPolicy
	}
	return grid.MaskWhere(func(i int, _ float64) bool {
		return policy.Masked(quality.Codes[i])
	}), nil
}

// MaskedCells returns a grid holding NaN where policy masks the pixel and 0 elsewhere.
// Adding it to a band grid invalidates exactly the masked cells.
func MaskedCells(quality QualityCodes, policy MaskPolicy) raster.Grid {
	if policy == nil {
		policy = DefaultMaskPolicy
	}
	out := raster.NewGrid(quality.Rows, quality.Cols, 0)
	for i, c := range quality.Codes {
		if policy.Masked(c) {
			out.Data[i] = math.NaN()
		}
	}
	return out
}

// CloudFilter loads the scene's BQA raster for the same window and masks grid.
func (s Scene) CloudFilter(grid raster.Grid, window *raster.Window, policy MaskPolicy) (raster.Grid, error) {
	q, err := s.ReadQuality(window)
	if err != nil {
		return raster.Grid{}, err
	}
	filtered, err := CloudFilter(grid, q, policy)
	if err != nil {
		return raster.Grid{}, err
	}
	log.WithFields(log.Fields{"scene": s.ID, "policy": fmt.Sprint(policy)}).
		Debugf("cloud filter kept %d of %d valid cells", filtered.ValidCount(), grid.ValidCount())
	return filtered, nil
}
