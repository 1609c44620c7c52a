// Package dataset imports the initial curb records from JSON, JSON lines or
// CSV files.
//
// Every format carries the same two fields:
//
//	{"geohash": "9q8yykvq6nhv", "curb_designation": 6}
//
// curb_designation may also be a numeric string ("6"). Rows that cannot be
// decoded or fail validation are skipped; the loader returns the rows it
// could read together with one ErrMalformedRecord per rejected row.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"curbfinder/internal/domain/entities"
	"curbfinder/internal/pkg/validator"

	"github.com/rotisserie/eris"
)

// Format names an input encoding.
type Format string

const (
	FormatJSON      Format = "json"
	FormatJSONLines Format = "jsonl"
	FormatCSV       Format = "csv"
)

// designation accepts both 6 and "6".
type designation int

func (d *designation) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return d.parse(s)
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = designation(n)
	return nil
}

func (d *designation) parse(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return eris.Wrapf(err, "curb_designation %q", s)
	}
	*d = designation(n)
	return nil
}

type row struct {
	Geohash     string       `json:"geohash" validate:"required"`
	Designation *designation `json:"curb_designation" validate:"required,min=0"`
}

func (r row) record() (entities.CurbRecord, error) {
	r.Geohash = strings.TrimSpace(r.Geohash)
	if err := validator.Validate(r); err != nil {
		return entities.CurbRecord{}, eris.Wrapf(entities.ErrMalformedRecord, "%v", err)
	}
	return entities.CurbRecord{Geohash: r.Geohash, Designation: int(*r.Designation)}, nil
}

// DetectFormat picks a format from a file extension, defaulting to JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".jsonl", ".ndjson":
		return FormatJSONLines
	default:
		return FormatJSON
	}
}

// LoadFile reads the records stored at path.
func LoadFile(path string) ([]entities.CurbRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	return Load(f, DetectFormat(path))
}

// Load decodes records from r. The returned slice holds every row that
// could be decoded even when err is non-nil.
func Load(r io.Reader, format Format) ([]entities.CurbRecord, error) {
	switch format {
	case FormatJSON:
		return loadJSON(r)
	case FormatJSONLines:
		return loadJSONLines(r)
	case FormatCSV:
		return loadCSV(r)
	default:
		return nil, eris.Errorf("dataset: unknown format %q", format)
	}
}

func loadJSON(r io.Reader) ([]entities.CurbRecord, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read json")
	}
	if first != '[' {
		return loadJSONLines(br)
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(br).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "dataset: decode json array")
	}

	records := make([]entities.CurbRecord, 0, len(raw))
	var errs []error
	for i, msg := range raw {
		rec, err := decodeRow(msg)
		if err != nil {
			errs = append(errs, eris.Wrapf(err, "dataset: element %d", i))
			continue
		}
		records = append(records, rec)
	}
	return records, errors.Join(errs...)
}

func loadJSONLines(r io.Reader) ([]entities.CurbRecord, error) {
	scanner := bufio.NewScanner(r)
	var records []entities.CurbRecord
	var errs []error
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		rec, err := decodeRow(text)
		if err != nil {
			errs = append(errs, eris.Wrapf(err, "dataset: line %d", line))
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, eris.Wrap(err, "dataset: scan json lines")
	}
	return records, errors.Join(errs...)
}

func loadCSV(r io.Reader) ([]entities.CurbRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read csv header")
	}

	ghCol, desCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "geohash":
			ghCol = i
		case "curb_designation":
			desCol = i
		}
	}
	if ghCol < 0 || desCol < 0 {
		return nil, eris.Errorf("dataset: csv header must contain geohash and curb_designation, got %v", header)
	}

	var records []entities.CurbRecord
	var errs []error
	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, eris.Wrapf(entities.ErrMalformedRecord, "dataset: csv line %d: %v", line, err))
			continue
		}

		var rw row
		if ghCol < len(fields) {
			rw.Geohash = fields[ghCol]
		}
		if desCol < len(fields) && strings.TrimSpace(fields[desCol]) != "" {
			var d designation
			if err := d.parse(fields[desCol]); err != nil {
				errs = append(errs, eris.Wrapf(entities.ErrMalformedRecord, "dataset: csv line %d: %v", line, err))
				continue
			}
			rw.Designation = &d
		}

		rec, err := rw.record()
		if err != nil {
			errs = append(errs, eris.Wrapf(err, "dataset: csv line %d", line))
			continue
		}
		records = append(records, rec)
	}
	return records, errors.Join(errs...)
}

func decodeRow(msg []byte) (entities.CurbRecord, error) {
	var rw row
	if err := json.Unmarshal(msg, &rw); err != nil {
		return entities.CurbRecord{}, eris.Wrapf(entities.ErrMalformedRecord, "%v", err)
	}
	return rw.record()
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		return b, br.UnreadByte()
	}
}
