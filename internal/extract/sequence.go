package extract

// Sequences allocates class and slot ids for one parse run. Both counters start
// at zero and only grow; a run owns exactly one Sequences value and passes it
// to every builder.
type Sequences struct {
	classes int64
	slots   int64
}

// NewSequences returns counters starting at zero.
func NewSequences() *Sequences {
	return &Sequences{}
}

// NextClassID returns the next class id.
func (s *Sequences) NextClassID() int64 {
	id := s.classes
	s.classes++
	return id
}

// NextSlotID returns the next slot id.
func (s *Sequences) NextSlotID() int64 {
	id := s.slots
	s.slots++
	return id
}

// Classes is the number of class ids handed out.
func (s *Sequences) Classes() int64 { return s.classes }

// Slots is the number of slot ids handed out.
func (s *Sequences) Slots() int64 { return s.slots }
