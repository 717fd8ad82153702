package deadcode

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Result is the verdict of one resolution pass.
type Result struct {
	// Dead lists unreferenced, non-ignored definitions ordered by location.
	Dead []*Definition
	// DeadIDs and LiveIDs partition the IDs of every non-ignored definition.
	DeadIDs *roaring.Bitmap
	LiveIDs *roaring.Bitmap
	// Ignored counts definitions excluded by plugins.
	Ignored int
	// Total counts every definition in the index.
	Total int
	// ByKind counts dead definitions per kind.
	ByKind map[Kind]int
}

// IsDead reports whether the definition was found dead.
func (r *Result) IsDead(d *Definition) bool {
	return r.DeadIDs.Contains(d.ID())
}

// LiveCount returns the number of live, non-ignored definitions.
func (r *Result) LiveCount() int {
	return int(r.LiveIDs.GetCardinality())
}

// Resolve marks every non-ignored definition dead when no reference of any
// origin or kind shares its bare name. There is no reachability propagation
// and no namespace qualification: a call to `run` anywhere keeps every `run`
// alive. The index must be sealed.
func Resolve(idx *Index) *Result {
	if !idx.Sealed() {
		panic("deadcode: Resolve called on an unsealed index")
	}

	res := &Result{
		DeadIDs: roaring.New(),
		LiveIDs: roaring.New(),
		ByKind:  make(map[Kind]int),
	}

	defs := idx.Definitions()
	res.Total = len(defs)
	for _, d := range defs {
		d.validate()
		if d.Ignored() {
			res.Ignored++
			continue
		}
		if idx.HasReferences(d.name) {
			res.LiveIDs.Add(d.id)
			continue
		}
		res.DeadIDs.Add(d.id)
		res.ByKind[d.kind]++
		res.Dead = append(res.Dead, d)
	}
	return res
}
