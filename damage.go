package gridterm

import "sort"

// Damage accumulates the rows mutated since the last publish to the
// renderer. Operations whose blast radius is hard to bound cheaply mark the
// whole screen instead.
type Damage struct {
	full bool
	rows map[int]struct{}
}

// DamageRegion is the renderer-visible form of accumulated damage.
type DamageRegion struct {
	Full bool
	Rows []int
}

// Empty reports whether the region contains no damage.
func (r DamageRegion) Empty() bool { return !r.Full && len(r.Rows) == 0 }

func (d *Damage) markRow(row int) {
	if d.full {
		return
	}
	if d.rows == nil {
		d.rows = make(map[int]struct{})
	}
	d.rows[row] = struct{}{}
}

func (d *Damage) markRange(from, to int) {
	for i := from; i <= to; i++ {
		d.markRow(i)
	}
}

func (d *Damage) markAll() {
	d.full = true
	d.rows = nil
}

// take returns the accumulated region and clears it. Each damage mark is
// delivered at most once across consecutive takes.
func (d *Damage) take() DamageRegion {
	region := DamageRegion{Full: d.full}
	if !d.full && len(d.rows) > 0 {
		region.Rows = make([]int, 0, len(d.rows))
		for r := range d.rows {
			region.Rows = append(region.Rows, r)
		}
		sort.Ints(region.Rows)
	}
	d.full = false
	d.rows = nil
	return region
}
