package ui

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forest-guardian/landsat-toa/internal/landsat"
	"github.com/forest-guardian/landsat-toa/internal/properties"
	"github.com/forest-guardian/landsat-toa/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBands(t *testing.T) {
	bands, err := ParseBands("4, 5,,10")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 10}, bands)

	for _, input := range []string{"", " , ", "0", "12", "4,x"} {
		_, err := ParseBands(input)
		assert.Error(t, err, input)
	}
}

func TestScenesIn(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"LC08_B_MTL.TXT", "LC08_A_MTL.TXT", "LC08_A_B4.TIF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "LC08_C_MTL.TXT"), 0755))

	scenes, err := ScenesIn(landsat.DefaultNaming(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"LC08_A", "LC08_B"}, scenes)

	_, err = ScenesIn(landsat.DefaultNaming(filepath.Join(dir, "missing")))
	assert.ErrorIs(t, err, raster.ErrNotFound)
}

func TestCreateResultDirectory(t *testing.T) {
	root := t.TempDir()
	t.Setenv(properties.ROOT_PATH, root)

	dir, err := CreateResultDirectory("LC08_A", "wdrvi")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "data", "result", "LC08_A", "wdrvi"), dir)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "LC08_A_wdrvi.TIF"), resultFile(dir, "LC08_A", "wdrvi.TIF"))
	assert.Equal(t, "RdYlGn", orDefault("", "RdYlGn"))
	assert.Equal(t, "gray", orDefault("gray", "RdYlGn"))
}

func withInput(t *testing.T, input string) {
	t.Helper()
	prev := stdin
	stdin = bufio.NewReader(strings.NewReader(input))
	inputClosed = false
	t.Cleanup(func() {
		stdin = prev
		inputClosed = false
	})
}

func TestReadIntOnClosedInput(t *testing.T) {
	withInput(t, "7\n")
	v, err := ReadInt("", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = ReadInt("", 1, 10)
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestShowMenuReturnsOnClosedInput(t *testing.T) {
	withInput(t, "99\n")
	done := make(chan struct{})
	go func() {
		ShowMenu()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("menu kept reading after stdin closed")
	}
}
