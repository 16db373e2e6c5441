package processbar

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Bar renders progress over a byte total on a single terminal line.
type Bar struct {
	cancel    context.CancelFunc
	done      chan struct{}
	total     int64
	count     int64
	percent   int
	tag       string
	format    string
	startTime time.Time
	clock     clockz.Clock
	out       io.Writer
	mut       sync.Mutex
}

func New(total int64) *Bar {
	bar := &Bar{
		total:  total,
		tag:    "#",
		format: "\r[%-50s] %3d%% %9s/%-9s %-11s",
		clock:  clockz.RealClock,
		out:    os.Stderr,
	}

	return bar
}

func (b *Bar) SetTag(tag string) *Bar {
	b.tag = tag
	return b
}

func (b *Bar) SetClock(clock clockz.Clock) *Bar {
	b.clock = clock
	return b
}

func (b *Bar) SetOutput(w io.Writer) *Bar {
	b.out = w
	return b
}

func (b *Bar) Add(n int64) {
	b.mut.Lock()
	if b.startTime.IsZero() {
		b.startTime = b.clock.Now()
	}
	b.count += n
	b.mut.Unlock()
}

func (b *Bar) Flush() {
	b.calculate()
	b.display()
}

func (b *Bar) AutoFlush(interval time.Duration) {
	b.stop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	b.cancel = cancel
	b.done = done
	ticker := b.clock.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				b.Flush()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// stop cancels the flush goroutine and waits until it has returned.
func (b *Bar) stop() {
	if b.cancel != nil {
		b.cancel()
		<-b.done
		b.cancel = nil
		b.done = nil
	}
}

func (b *Bar) calculate() {
	b.mut.Lock()
	if b.total <= 0 || b.count >= b.total {
		b.percent = 100
	} else {
		b.percent = int(b.count * 100 / b.total)
	}
	b.mut.Unlock()
}

func (b *Bar) display() {
	b.mut.Lock()
	var secs time.Duration
	if !b.startTime.IsZero() {
		secs = b.clock.Now().Sub(b.startTime).Truncate(time.Second)
	}
	fmt.Fprintf(b.out, b.format, strings.Repeat(b.tag, b.percent/2), b.percent, size(b.count), size(b.total), secs)
	b.mut.Unlock()
}

func (b *Bar) Finish() {
	b.stop()
	b.Flush()
	b.mut.Lock()
	fmt.Fprintln(b.out)
	b.mut.Unlock()
}

// Counter advances the bar by every byte read from r.
func (b *Bar) Counter(r io.Reader) io.Reader {
	return &counter{r: r, bar: b}
}

type counter struct {
	r   io.Reader
	bar *Bar
}

func (c *counter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.bar.Add(int64(n))
	}
	return n, err
}

func size(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
