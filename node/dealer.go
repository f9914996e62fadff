package node

import "reflect"

// Pair is a source and target type planned together.
type Pair struct{ Src, Dst reflect.Type }

// Dealer hands out the type pairs still to be visited, each pair once, in the
// order they were first needed.
type Dealer struct {
	needs []Pair
	done  map[Pair]struct{}
}

func (d *Dealer) NextNeeds() (src, dst reflect.Type, ok bool) {
	for len(d.needs) > 0 {
		pair := d.needs[0]
		d.needs = d.needs[1:]

		if _, exists := d.done[pair]; !exists {
			d.Done(pair.Src, pair.Dst)

			return pair.Src, pair.Dst, true
		}
	}

	return
}

func (d *Dealer) Needs(src, dst reflect.Type) {
	pair := Pair{Src: src, Dst: dst}
	if _, exists := d.done[pair]; !exists {
		d.needs = append(d.needs, pair)
	}
}

func (d *Dealer) Done(src, dst reflect.Type) {
	if d.done == nil {
		d.done = make(map[Pair]struct{})
	}

	d.done[Pair{Src: src, Dst: dst}] = struct{}{}
}

// Pending reports how many pairs are queued, duplicates included.
func (d *Dealer) Pending() int {
	return len(d.needs)
}
