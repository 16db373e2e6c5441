package joiner

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/greyh4t/logmerge/codec"
)

const block = " r n b q k b n r\n p p p p p p p p\n . . . . . . . .\n . . . . . . . .\n . . . . . . . .\n . . . . . . . .\n P P P P P P P P\n R N B Q K B N R\n"

func TestWriterJoiner(t *testing.T) {
	var buf bytes.Buffer
	j := NewWriter(&buf)

	for _, id := range []int{0, 12, 0} {
		if err := j.Add(id, []byte(block)); err != nil {
			t.Fatalf("found err: %v", err)
		}
	}
	if err := j.Merge(); err != nil {
		t.Fatalf("found err: %v", err)
	}

	want := "0\n" + block + "12\n" + block + "0\n" + block
	if buf.String() != want {
		t.Errorf("Wanted: %q, found: %q", want, buf.String())
	}
	if j.Count() != 3 {
		t.Errorf("Wanted: 3, found: %d", j.Count())
	}
}

func TestFileJoiner(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"log.txt", "log.txt.sz", "log.txt.lz4", "log.txt.zst"} {
		path := filepath.Join(dir, name)

		j, err := NewFile(path)
		if err != nil {
			t.Fatalf("found err: %v", err)
		}
		if err := j.Add(3, []byte(block)); err != nil {
			t.Fatalf("found err: %v", err)
		}
		if err := j.Merge(); err != nil {
			t.Fatalf("found err: %v", err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("found err: %v", err)
		}
		r := codec.NewReader(name, f)
		data, err := io.ReadAll(r)
		r.Close()
		f.Close()
		if err != nil {
			t.Fatalf("%s: found err: %v", name, err)
		}

		if string(data) != "3\n"+block {
			t.Errorf("%s: Wanted: %q, found: %q", name, "3\n"+block, data)
		}
	}
}

var _ Joiner = (*FileJoiner)(nil)
var _ Joiner = (*WriterJoiner)(nil)

func TestFileJoinerTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	if err := os.WriteFile(path, []byte("stale contents that are longer than the output\n"), 0644); err != nil {
		t.Fatal(err)
	}

	j, err := NewFile(path)
	if err != nil {
		t.Fatalf("found err: %v", err)
	}
	j.Add(1, []byte("x\n"))
	if err := j.Merge(); err != nil {
		t.Fatalf("found err: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "1\nx\n" {
		t.Errorf("Wanted: %q, found: %q", "1\nx\n", data)
	}
}

type failingEncoder struct {
	closed bool
}

func (e *failingEncoder) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func (e *failingEncoder) Close() error {
	e.closed = true
	return nil
}

func TestFileJoinerClosesEncoderOnFlushError(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "log.txt.zst"))
	if err != nil {
		t.Fatal(err)
	}

	enc := &failingEncoder{}
	j := &FileJoiner{WriterJoiner: NewWriter(enc), file: f, enc: enc}
	if err := j.Add(0, []byte(block)); err != nil {
		t.Fatalf("found err: %v", err)
	}

	err = j.Merge()
	if err == nil || err.Error() != "disk full" {
		t.Errorf("Wanted flush error, found: %v", err)
	}
	if !enc.closed {
		t.Error("encoder left open after a failed flush")
	}
	if _, err := f.Write([]byte("x")); err == nil {
		t.Error("file left open after a failed flush")
	}
}
