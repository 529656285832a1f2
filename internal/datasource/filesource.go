package datasource

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrFileNotFound marks a logical name with no file behind it. Ingestion
// treats it as fatal only for required files.
var ErrFileNotFound = errors.New("csv file not found")

// DataSource reads CSVs by logical name for one (restaurant, date) scope.
type DataSource interface {
	ReadCSV(ctx context.Context, logical string) (*Table, error)
	ListAvailable(ctx context.Context) ([]string, error)
}

// FileSource reads CSVs from <baseDir>/<restaurant>/<date>/. Logical names
// resolve to NAME.csv first, then the date-suffixed NAME_YYYY_MM_DD.csv.
type FileSource struct {
	dir  string
	date string
}

// NewFileSource builds a source scoped to one run directory.
func NewFileSource(baseDir, restaurant, date string) *FileSource {
	return &FileSource{
		dir:  filepath.Join(baseDir, restaurant, date),
		date: date,
	}
}

// ReadCSV resolves and loads one logical file.
func (s *FileSource) ReadCSV(ctx context.Context, logical string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(logical)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	table, err := parseCSV(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return table, nil
}

// ListAvailable returns the logical names present in the run directory,
// sorted for stable output.
func (s *FileSource) ListAvailable(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}
	suffix := "_" + strings.ReplaceAll(s.date, "-", "_")
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		name = strings.TrimSuffix(name, suffix)
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileSource) resolve(logical string) (string, error) {
	candidates := []string{
		filepath.Join(s.dir, logical+".csv"),
		filepath.Join(s.dir, logical+"_"+strings.ReplaceAll(s.date, "-", "_")+".csv"),
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %q in %s", ErrFileNotFound, logical, s.dir)
}

// decoders is the fallback chain applied to non-UTF-8 input, in order.
var decoders = []*charmap.Charmap{
	charmap.ISO8859_1, // Latin-1
	charmap.Windows1252,
	charmap.ISO8859_1,
}

func parseCSV(raw []byte) (*Table, error) {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	decoded, err := decode(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, record)
	}
	return NewTable(header, rows), nil
}

// decode applies the encoding chain: UTF-8 as-is, then each single-byte
// decoder until one succeeds.
func decode(raw []byte) ([]byte, error) {
	if utf8.Valid(raw) {
		return raw, nil
	}
	var lastErr error
	for _, cm := range decoders {
		decoded, err := decodeWith(cm.NewDecoder(), raw)
		if err == nil {
			return decoded, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("decode: no encoding in chain accepted input: %w", lastErr)
}

func decodeWith(dec *encoding.Decoder, raw []byte) ([]byte, error) {
	out, err := dec.Bytes(raw)
	if err != nil {
		return nil, err
	}
	return out, nil
}
