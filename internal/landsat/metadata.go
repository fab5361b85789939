package landsat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/forest-guardian/landsat-toa/internal/raster"
)

const dateAcquiredKey = "DATE_ACQUIRED"

// Metadata is the KEY = VALUE table of a scene's MTL file. Values are kept as the
// raw strings found in the file. It is not modified after loading.
type Metadata struct {
	table map[string]string
}

// NewMetadata copies table into a Metadata value.
func NewMetadata(table map[string]string) Metadata {
	m := make(map[string]string, len(table))
	for k, v := range table {
		m[k] = v
	}
	return Metadata{table: m}
}

// ParseMetadataLine splits line on its first '=' and trims whitespace from both sides.
func ParseMetadataLine(line string) (key, value string, err error) {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", &ParseError{Text: line}
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), nil
}

// ParseMetadata reads an MTL stream. The final line is a terminator (END) and is
// discarded. Repeated keys keep their last value.
func ParseMetadata(r io.Reader) (Metadata, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}
	if len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}

	table := make(map[string]string, len(lines))
	for i, line := range lines {
		key, value, err := ParseMetadataLine(line)
		if err != nil {
			return Metadata{}, &ParseError{Line: i + 1, Text: line}
		}
		table[key] = value
	}
	return Metadata{table: table}, nil
}

// LoadMetadata opens and parses the MTL file at path.
func LoadMetadata(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, &raster.NotFoundError{Path: path, Err: err}
	}
	defer f.Close()

	md, err := ParseMetadata(f)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
		}
		return Metadata{}, err
	}
	return md, nil
}

// Get returns the raw value of key.
func (m Metadata) Get(key string) (string, bool) {
	v, ok := m.table[key]
	return v, ok
}

// String returns the value of key with surrounding double quotes removed.
func (m Metadata) String(key string) (string, error) {
	v, ok := m.table[key]
	if !ok {
		return "", &MissingParameterError{Key: key}
	}
	return strings.Trim(v, `"`), nil
}

// Float parses the value of key as a float64.
func (m Metadata) Float(key string) (float64, error) {
	v, ok := m.table[key]
	if !ok {
		return 0, &MissingParameterError{Key: key}
	}
	f, err := strconv.ParseFloat(strings.Trim(v, `"`), 64)
	if err != nil {
		return 0, &ParseError{Text: key + " = " + v, Err: err}
	}
	return f, nil
}

// Keys returns the keys in lexical order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m.table))
	for k := range m.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m Metadata) Len() int {
	return len(m.table)
}

// AcquisitionDate parses DATE_ACQUIRED.
func (m Metadata) AcquisitionDate() (time.Time, error) {
	v, err := m.String(dateAcquiredKey)
	if err != nil {
		return time.Time{}, err
	}
	date, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, &ParseError{Text: dateAcquiredKey + " = " + v, Err: err}
	}
	return date, nil
}

// DayOfYear is the ordinal day of DATE_ACQUIRED.
func (m Metadata) DayOfYear() (int, error) {
	date, err := m.AcquisitionDate()
	if err != nil {
		return 0, err
	}
	return date.YearDay(), nil
}
