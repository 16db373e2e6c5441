package joiner

// Joiner collects merged records. Merge finishes the output once every
// record has been added.
type Joiner interface {
	Add(id int, block []byte) error
	Merge() error
}
