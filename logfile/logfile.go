package logfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/greyh4t/logmerge/ts"
)

// RecordLines is the number of payload lines following every timestamp.
const RecordLines = 8

var (
	ErrTruncated = errors.New("truncated record")
	ErrEmpty     = errors.New("no records")
)

type ParseError struct {
	Name string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Name, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader is a cursor over one timestamped log. Callers alternate Next and
// Record.
type Reader struct {
	name string
	r    *bufio.Reader
	line int
}

func NewReader(r io.Reader, name string) *Reader {
	return &Reader{
		name: name,
		r:    bufio.NewReader(r),
	}
}

// Open wraps r and reads its first timestamp.
func Open(r io.Reader, name string) (*Reader, float64, error) {
	reader := NewReader(r, name)
	t, err := reader.Next()
	if err == io.EOF {
		return nil, 0, &ParseError{Name: name, Line: 1, Err: ErrEmpty}
	}
	if err != nil {
		return nil, 0, err
	}
	return reader, t, nil
}

func (r *Reader) Name() string {
	return r.name
}

// Next reads the next timestamp line. It returns io.EOF only when the stream
// has no bytes left; a blank line is a parse error.
func (r *Reader) Next() (float64, error) {
	line, err := r.readLine()
	if err == io.EOF && len(line) == 0 {
		return 0, io.EOF
	}
	if err != nil && err != io.EOF {
		return 0, err
	}

	t, err := ts.Parse(line)
	if err != nil {
		return 0, &ParseError{Name: r.name, Line: r.line, Err: err}
	}
	return t, nil
}

// Record returns the payload lines that follow the last timestamp, byte for
// byte.
func (r *Reader) Record() ([]byte, error) {
	var block []byte
	for i := 0; i < RecordLines; i++ {
		line, err := r.readLine()
		if err == io.EOF && (len(line) == 0 || i < RecordLines-1) {
			return nil, &ParseError{
				Name: r.name,
				Line: r.line,
				Err:  fmt.Errorf("%w: %d of %d lines", ErrTruncated, i+boolInt(len(line) > 0), RecordLines),
			}
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		block = append(block, line...)
	}
	return block, nil
}

func (r *Reader) readLine() ([]byte, error) {
	line, err := r.r.ReadBytes('\n')
	if len(line) > 0 {
		r.line++
	}
	return line, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
