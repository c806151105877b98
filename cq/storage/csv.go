package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/wbrown/janus-cq/cq"
)

// DirSource reads relations from <Dir>/files/<relation>.csv.
type DirSource struct {
	Dir string
}

// Open implements Source.
func (s DirSource) Open(relation string, arity int) (RowReader, error) {
	return OpenCSV(RelationPath(s.Dir, relation), arity)
}

// CSVReader reads one tuple per line. Fields are comma separated with
// optional spaces after the comma; string fields are single-quoted.
type CSVReader struct {
	path    string
	arity   int
	file    *os.File
	scanner *bufio.Scanner
	row     []cq.Constant
	line    int
	err     error
}

// OpenCSV opens the relation file at path. A missing file is an error.
func OpenCSV(path string, arity int) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("relation file %s: %w", path, ErrNoSuchRelation)
		}
		return nil, fmt.Errorf("failed to open relation file: %w", err)
	}
	return &CSVReader{
		path:    path,
		arity:   arity,
		file:    f,
		scanner: bufio.NewScanner(f),
	}, nil
}

func (r *CSVReader) Next() bool {
	if r.err != nil || r.scanner == nil {
		return false
	}
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimRight(r.scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		row, err := ParseRow(text)
		if err != nil {
			r.err = fmt.Errorf("%s:%d: %w", r.path, r.line, err)
			return false
		}
		if r.arity > 0 && len(row) != r.arity {
			r.err = fmt.Errorf("%s:%d: expected %d fields, got %d", r.path, r.line, r.arity, len(row))
			return false
		}
		r.row = row
		return true
	}
	if err := r.scanner.Err(); err != nil {
		r.err = fmt.Errorf("%s: %w", r.path, err)
	}
	r.row = nil
	return false
}

func (r *CSVReader) Row() []cq.Constant { return r.row }
func (r *CSVReader) Err() error         { return r.err }

func (r *CSVReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	r.scanner = nil
	return err
}

// ParseRow splits a relation line into constants. Commas inside quoted
// strings do not split fields.
func ParseRow(line string) ([]cq.Constant, error) {
	var row []cq.Constant
	var field strings.Builder
	inQuote := false

	flush := func() error {
		c, err := cq.ParseLiteral(strings.TrimSpace(field.String()))
		if err != nil {
			return fmt.Errorf("field %d: %w", len(row)+1, err)
		}
		row = append(row, c)
		field.Reset()
		return nil
	}

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			field.WriteByte(ch)
		case ch == ',' && !inQuote:
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			field.WriteByte(ch)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated string literal")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return row, nil
}
