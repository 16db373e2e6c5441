package joiner

import (
	"io"
	"os"

	"github.com/greyh4t/logmerge/codec"
)

// FileJoiner writes the merged log to a file, compressed when the file name
// ends in a known compression extension.
type FileJoiner struct {
	*WriterJoiner
	file *os.File
	enc  io.WriteCloser
}

func NewFile(outFile string) (*FileJoiner, error) {
	f, err := os.OpenFile(outFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	enc := codec.NewWriter(outFile, f)

	joiner := &FileJoiner{
		WriterJoiner: NewWriter(enc),
		file:         f,
		enc:          enc,
	}

	return joiner, nil
}

func (j *FileJoiner) Merge() error {
	err := j.WriterJoiner.Merge()
	if eerr := j.enc.Close(); err == nil {
		err = eerr
	}
	if cerr := j.file.Close(); err == nil {
		err = cerr
	}
	return err
}
