package joiner

import (
	"bufio"
	"io"
	"strconv"
)

// WriterJoiner writes each record as its stream index on one line followed by
// the record verbatim.
type WriterJoiner struct {
	w     *bufio.Writer
	count int
	id    []byte
}

func NewWriter(w io.Writer) *WriterJoiner {
	return &WriterJoiner{
		w: bufio.NewWriterSize(w, 64*1024),
	}
}

func (j *WriterJoiner) Add(id int, block []byte) error {
	j.id = strconv.AppendInt(j.id[:0], int64(id), 10)
	j.id = append(j.id, '\n')

	_, err := j.w.Write(j.id)
	if err != nil {
		return err
	}
	_, err = j.w.Write(block)
	if err != nil {
		return err
	}
	j.count++
	return nil
}

func (j *WriterJoiner) Count() int {
	return j.count
}

func (j *WriterJoiner) Merge() error {
	return j.w.Flush()
}
