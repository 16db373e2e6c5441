package merger

import (
	"container/heap"
	"fmt"
	"io"

	"github.com/greyh4t/logmerge/logger"
)

// Source is one input stream positioned on a record whose timestamp has
// already been read.
type Source interface {
	Next() (float64, error)
	Record() ([]byte, error)
}

// Sink receives merged records tagged with their stream index.
type Sink interface {
	Add(id int, block []byte) error
}

type Stats struct {
	Records int
	Streams []int
}

// Merger interleaves sources by ascending timestamp. Equal timestamps are
// emitted lowest stream index first.
type Merger struct {
	sources []Source
	active  heads
	last    []float64
	warned  []bool
}

// New takes every source together with the timestamp of its first record.
// The position in sources is the index written to the sink.
func New(sources []Source, firsts []float64) (*Merger, error) {
	if len(sources) != len(firsts) {
		return nil, fmt.Errorf("%d sources but %d timestamps", len(sources), len(firsts))
	}

	m := &Merger{
		sources: sources,
		active:  make(heads, 0, len(sources)),
		last:    make([]float64, len(sources)),
		warned:  make([]bool, len(sources)),
	}

	for i, t := range firsts {
		m.active = append(m.active, head{id: i, t: t})
		m.last[i] = t
	}
	heap.Init(&m.active)

	return m, nil
}

// Run drains every source into sink. It stops at the first error.
func (m *Merger) Run(sink Sink) (Stats, error) {
	stats := Stats{Streams: make([]int, len(m.sources))}

	for m.active.Len() > 0 {
		h := m.active[0]
		src := m.sources[h.id]

		block, err := src.Record()
		if err != nil {
			return stats, fmt.Errorf("stream %d: %w", h.id, err)
		}

		err = sink.Add(h.id, block)
		if err != nil {
			return stats, fmt.Errorf("write record from stream %d: %w", h.id, err)
		}
		stats.Records++
		stats.Streams[h.id]++

		if len(block) > 0 && block[len(block)-1] != '\n' {
			logger.Log().Warn().
				Int("stream", h.id).
				Msg("record ends without a newline, the next index line will run into it")
		}

		t, err := src.Next()
		if err == io.EOF {
			heap.Pop(&m.active)
			logger.Log().Debug().Int("stream", h.id).Int("records", stats.Streams[h.id]).Msg("stream drained")
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("stream %d: %w", h.id, err)
		}

		m.checkOrder(h.id, t)
		m.active[0].t = t
		heap.Fix(&m.active, 0)
	}

	return stats, nil
}

func (m *Merger) checkOrder(id int, t float64) {
	if t < m.last[id] && !m.warned[id] {
		m.warned[id] = true
		logger.Log().Warn().
			Int("stream", id).
			Float64("prev", m.last[id]).
			Float64("next", t).
			Msg("timestamps go backwards, output order follows stream heads")
	}
	m.last[id] = t
}

type head struct {
	id int
	t  float64
}

type heads []head

func (h heads) Len() int { return len(h) }

func (h heads) Less(i, j int) bool {
	if h[i].t != h[j].t {
		return h[i].t < h[j].t
	}
	return h[i].id < h[j].id
}

func (h heads) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *heads) Push(x interface{}) { *h = append(*h, x.(head)) }

func (h *heads) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
