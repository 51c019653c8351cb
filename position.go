package gridterm

// Position addresses a cell on the visible screen, zero-based.
type Position struct {
	Row, Col int
}

// Before reports whether p precedes q in reading order.
func (p Position) Before(q Position) bool {
	if p.Row != q.Row {
		return p.Row < q.Row
	}
	return p.Col < q.Col
}
