package properties

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	t.Setenv(ROOT_PATH, "")
	t.Setenv(WORKERS, "")
	t.Setenv(BAND_SUFFIX_PATTERN, "")

	assert.Equal(t, ".", RootPath())
	assert.Equal(t, filepath.Join(".", "data", "cache", "x"), DataPath("cache", "x"))
	assert.Equal(t, runtime.NumCPU(), Workers())
	assert.Equal(t, landsat.DefaultBandSuffixPattern, Naming().BandSuffixPattern)
}

func TestSceneRoot(t *testing.T) {
	t.Setenv(ROOT_PATH, "/srv/landsat")
	t.Setenv(SCENE_ROOT, "/mnt/scenes")
	assert.Equal(t, "/mnt/scenes", SceneRoot())
	assert.Equal(t, "/mnt/scenes", Naming().SceneRoot)
	assert.Equal(t, filepath.Join("/srv/landsat", "data", "result"), DataPath("result"))
}

func TestQAScoreThreshold(t *testing.T) {
	t.Setenv(QA_SCORE_THRESHOLD, "4")
	assert.Equal(t, 4, QAScoreThreshold())
	assert.Equal(t, landsat.ScoreThreshold{Max: 4}, MaskPolicy())

	for _, v := range []string{"seven", "-1", "7"} {
		t.Setenv(QA_SCORE_THRESHOLD, v)
		assert.Equal(t, defaultQAScoreThreshold, QAScoreThreshold(), v)
	}
}

func TestWorkers(t *testing.T) {
	t.Setenv(WORKERS, "3")
	assert.Equal(t, 3, Workers())
	t.Setenv(WORKERS, "0")
	assert.Equal(t, runtime.NumCPU(), Workers())
}
