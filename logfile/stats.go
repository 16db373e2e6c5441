package logfile

import "io"

// Stats summarises a whole stream.
type Stats struct {
	Name     string
	Records  int
	First    float64
	Last     float64
	Disorder int
}

// Scan walks every record of r. It fails on the same inputs a merge would.
func Scan(r io.Reader, name string) (Stats, error) {
	stats := Stats{Name: name}

	reader, t, err := Open(r, name)
	if err != nil {
		return stats, err
	}
	stats.First = t
	stats.Last = t

	for {
		if _, err := reader.Record(); err != nil {
			return stats, err
		}
		stats.Records++

		next, err := reader.Next()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return stats, err
		}

		if next < stats.Last {
			stats.Disorder++
		}
		stats.Last = next
	}
}
