package ts

import (
	"errors"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line string
		want float64
	}{
		{"1.5\n", 1.5},
		{"0.000341\r\n", 0.000341},
		{"  42 \n", 42},
		{"3", 3},
		{"1e-3\n", 0.001},
	}

	for _, c := range cases {
		got, err := Parse([]byte(c.line))
		if err != nil {
			t.Errorf("Parse(%q) found err: %v", c.line, err)
			continue
		}
		if got != c.want {
			t.Errorf("Parse(%q) wanted: %v, found: %v", c.line, c.want, got)
		}
	}
}

func TestParseOutOfRange(t *testing.T) {
	cases := map[string]float64{
		"1e400\n":  math.Inf(1),
		"-1e400\n": math.Inf(-1),
		"1e-400\n": 0,
	}
	for line, want := range cases {
		got, err := Parse([]byte(line))
		if err != nil {
			t.Errorf("Parse(%q) found err: %v", line, err)
			continue
		}
		if got != want {
			t.Errorf("Parse(%q) wanted: %v, found: %v", line, want, got)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, line := range []string{"\n", "", "abc\n", " . r n b q k b n r\n", "1.0.0", "NaN\n"} {
		_, err := Parse([]byte(line))
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("Parse(%q) wanted ErrInvalid, found: %v", line, err)
		}
	}
}

func TestFormat(t *testing.T) {
	if s := Format(2.0); s != "2" {
		t.Errorf("Wanted: 2, found: %s", s)
	}
	if s := Format(0.25); s != "0.25" {
		t.Errorf("Wanted: 0.25, found: %s", s)
	}
}
