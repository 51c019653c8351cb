package gridterm

// Scrollback is a capacity-bounded ring of lines evicted from the top of the
// grid. Lines are append-only once stored; only Clear discards them.
type Scrollback struct {
	lines []Line
	max   int
	head  int // index of the oldest line
	count int
}

// NewScrollback returns a buffer holding at most max lines. A zero or
// negative max disables history.
func NewScrollback(max int) *Scrollback {
	if max < 0 {
		max = 0
	}
	return &Scrollback{max: max}
}

// Len returns the number of stored lines.
func (s *Scrollback) Len() int { return s.count }

// Cap returns the configured capacity.
func (s *Scrollback) Cap() int { return s.max }

// Push appends a line, evicting the oldest once at capacity.
func (s *Scrollback) Push(l Line) {
	if s.max == 0 {
		return
	}
	if s.count < s.max {
		s.lines = append(s.lines, l)
		s.count++
		return
	}
	s.lines[s.head] = l
	s.head = (s.head + 1) % s.max
}

// Pop removes and returns the newest line, used when growing the grid pulls
// rows back from history.
func (s *Scrollback) Pop() (Line, bool) {
	if s.count == 0 {
		return Line{}, false
	}
	idx := (s.head + s.count - 1) % len(s.lines)
	l := s.lines[idx]
	if s.head == 0 {
		s.lines = s.lines[:s.count-1]
	} else {
		// wrapped ring: compact back to oldest-first order
		rebuilt := make([]Line, 0, s.count-1)
		for i := 0; i < s.count-1; i++ {
			rebuilt = append(rebuilt, s.lines[(s.head+i)%len(s.lines)])
		}
		s.lines = rebuilt
		s.head = 0
	}
	s.count--
	return l, true
}

// Line returns stored line i, where 0 is the oldest.
func (s *Scrollback) Line(i int) Line {
	return s.lines[(s.head+i)%len(s.lines)]
}

// View returns a read-only window of count lines starting offset lines back
// from the newest entry. The offset is clamped into [0, Len].
func (s *Scrollback) View(offset, count int) []Line {
	if offset < 0 {
		offset = 0
	}
	if offset > s.count {
		offset = s.count
	}
	start := s.count - offset
	if start+count > s.count {
		count = s.count - start
	}
	out := make([]Line, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.Line(start+i))
	}
	return out
}

// Clear atomically discards all history.
func (s *Scrollback) Clear() {
	s.lines = nil
	s.head = 0
	s.count = 0
}
