package ts

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var ErrInvalid = errors.New("invalid timestamp")

var (
	crlf = []byte("\r\n")
	lf   = []byte("\n")
)

// Parse reads the timestamp carried by a single line. The line terminator and
// surrounding blanks are ignored.
func Parse(line []byte) (float64, error) {
	text := Trim(line)
	if len(text) == 0 {
		return 0, fmt.Errorf("%w: empty line", ErrInvalid)
	}

	// Out of range values saturate to ±Inf or round toward zero.
	t, err := strconv.ParseFloat(string(text), 64)
	if errors.Is(err, strconv.ErrRange) {
		err = nil
	}
	if err != nil || math.IsNaN(t) {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, text)
	}
	return t, nil
}

func Trim(line []byte) []byte {
	if bytes.HasSuffix(line, crlf) {
		line = line[:len(line)-len(crlf)]
	} else if bytes.HasSuffix(line, lf) {
		line = line[:len(line)-len(lf)]
	}
	return bytes.TrimSpace(line)
}

func Format(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64)
}
