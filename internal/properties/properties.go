package properties

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/forest-guardian/landsat-toa/internal/landsat"
	log "github.com/sirupsen/logrus"
)

// Environment variables
const (
	ROOT_PATH                        = "ROOT_PATH"
	SCENE_ROOT                       = "SCENE_ROOT"
	BAND_SUFFIX_PATTERN              = "BAND_SUFFIX_PATTERN"
	QA_SCORE_THRESHOLD               = "QA_SCORE_THRESHOLD"
	WORKERS                          = "WORKERS"
	LOG_LEVEL                        = "LOG_LEVEL"
	DISCORD_ERROR_NOTIFICATION_URL   = "DISCORD_ERROR_NOTIFICATION_URL"
	DISCORD_SUCCESS_NOTIFICATION_URL = "DISCORD_SUCCESS_NOTIFICATION_URL"
)

const defaultQAScoreThreshold = 2

func RootPath() string {
	root := os.Getenv(ROOT_PATH)
	if root == "" {
		return "."
	}
	return root
}

// DataPath joins elem under $ROOT_PATH/data.
func DataPath(elem ...string) string {
	return filepath.Join(append([]string{RootPath(), "data"}, elem...)...)
}

// SceneRoot is the directory scene identifiers are resolved against. Defaults to
// $ROOT_PATH/data/scenes.
func SceneRoot() string {
	if root, ok := os.LookupEnv(SCENE_ROOT); ok {
		return root
	}
	return DataPath("scenes")
}

// Naming builds the scene naming configuration from the environment.
func Naming() landsat.Naming {
	naming := landsat.DefaultNaming(SceneRoot())
	if pattern, ok := os.LookupEnv(BAND_SUFFIX_PATTERN); ok && pattern != "" {
		naming.BandSuffixPattern = pattern
	}
	return naming
}

// QAScoreThreshold is the Max of the default ScoreThreshold mask policy.
func QAScoreThreshold() int {
	v, ok := os.LookupEnv(QA_SCORE_THRESHOLD)
	if !ok {
		return defaultQAScoreThreshold
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > landsat.MaxQAScore {
		log.Warnf("ignoring %s=%q, using %d", QA_SCORE_THRESHOLD, v, defaultQAScoreThreshold)
		return defaultQAScoreThreshold
	}
	return n
}

func MaskPolicy() landsat.MaskPolicy {
	return landsat.ScoreThreshold{Max: QAScoreThreshold()}
}

// Workers is the size of the batch worker pool.
func Workers() int {
	n, err := strconv.Atoi(os.Getenv(WORKERS))
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// ConfigureLogging sets the logrus level from LOG_LEVEL.
func ConfigureLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(os.Getenv(LOG_LEVEL))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

type Color struct {
	R, G, B uint8
}

// ClusterColors paints k-means labels in previews.
var ClusterColors = []Color{
	{230, 25, 75}, {60, 180, 75}, {255, 225, 25}, {0, 130, 200}, {245, 130, 48},
	{145, 30, 180}, {70, 240, 240}, {240, 50, 230}, {210, 245, 60},
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv(DISCORD_ERROR_NOTIFICATION_URL)
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv(DISCORD_SUCCESS_NOTIFICATION_URL)
}
