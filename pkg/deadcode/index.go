package deadcode

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 64

type shard struct {
	mu   sync.RWMutex
	defs map[string][]*Definition
	refs map[string][]Reference
}

// Index is the whole-program store of definitions and references, bucketed
// by bare name. Insertion is safe for concurrent producers.
type Index struct {
	shards [shardCount]shard
	nextID atomic.Uint32
	refs   atomic.Int64
	sealed atomic.Bool
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	idx := &Index{}
	for i := range idx.shards {
		idx.shards[i].defs = make(map[string][]*Definition)
		idx.shards[i].refs = make(map[string][]Reference)
	}
	return idx
}

func (x *Index) shardFor(name string) *shard {
	return &x.shards[xxhash.Sum64String(name)%shardCount]
}

func (x *Index) mustBeOpen() {
	if x.sealed.Load() {
		panic("deadcode: insertion into a sealed index")
	}
}

func (x *Index) addDefinition(d *Definition) {
	x.mustBeOpen()
	d.id = x.nextID.Add(1)
	d.sealed = &x.sealed

	s := x.shardFor(d.name)
	s.mu.Lock()
	s.defs[d.name] = append(s.defs[d.name], d)
	s.mu.Unlock()
}

func (x *Index) addReference(r Reference) {
	x.mustBeOpen()
	s := x.shardFor(r.name)
	s.mu.Lock()
	s.refs[r.name] = append(s.refs[r.name], r)
	s.mu.Unlock()
	x.refs.Add(1)
}

// Seal ends the indexing phase. Afterwards insertions and Ignore panic.
func (x *Index) Seal() {
	x.sealed.Store(true)
}

// Sealed reports whether Seal was called.
func (x *Index) Sealed() bool {
	return x.sealed.Load()
}

// DefinitionsNamed returns the definitions whose bare name is name.
func (x *Index) DefinitionsNamed(name string) []*Definition {
	s := x.shardFor(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Definition(nil), s.defs[name]...)
}

// ReferencesNamed returns the references whose bare name is name.
func (x *Index) ReferencesNamed(name string) []Reference {
	s := x.shardFor(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Reference(nil), s.refs[name]...)
}

// HasReferences reports whether any reference with this bare name exists.
func (x *Index) HasReferences(name string) bool {
	s := x.shardFor(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.refs[name]) > 0
}

// Definitions returns every definition ordered by location, then full name.
func (x *Index) Definitions() []*Definition {
	var all []*Definition
	for i := range x.shards {
		s := &x.shards[i]
		s.mu.RLock()
		for _, defs := range s.defs {
			all = append(all, defs...)
		}
		s.mu.RUnlock()
	}
	sortDefinitions(all)
	return all
}

// References returns every reference ordered by location, then name.
func (x *Index) References() []Reference {
	var all []Reference
	for i := range x.shards {
		s := &x.shards[i]
		s.mu.RLock()
		for _, refs := range s.refs {
			all = append(all, refs...)
		}
		s.mu.RUnlock()
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.location != b.location {
			return a.location.Less(b.location)
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.origin < b.origin
	})
	return all
}

// DefinitionCount returns the number of definitions inserted.
func (x *Index) DefinitionCount() int {
	return int(x.nextID.Load())
}

// ReferenceCount returns the number of references inserted.
func (x *Index) ReferenceCount() int {
	return int(x.refs.Load())
}

func sortDefinitions(defs []*Definition) {
	sort.Slice(defs, func(i, j int) bool {
		a, b := defs[i], defs[j]
		if a.location != b.location {
			return a.location.Less(b.location)
		}
		if a.fullName != b.fullName {
			return a.fullName < b.fullName
		}
		return a.kind < b.kind
	})
}

// DefinitionRecord is the serialized form of a Definition.
type DefinitionRecord struct {
	Kind       Kind       `json:"kind"`
	Name       string     `json:"name"`
	FullName   string     `json:"full_name"`
	Owner      string     `json:"owner,omitempty"`
	Superclass string     `json:"superclass,omitempty"`
	Location   Location   `json:"location"`
	Visibility Visibility `json:"visibility"`
	Ignored    bool       `json:"ignored,omitempty"`
}

// ReferenceRecord is the serialized form of a Reference.
type ReferenceRecord struct {
	Name     string   `json:"name"`
	Kind     RefKind  `json:"kind"`
	Location Location `json:"location"`
	Origin   Origin   `json:"origin"`
}

// FileSnapshot is everything one file contributed to the index, used to
// replay cached indexing results.
type FileSnapshot struct {
	Path        string             `json:"path"`
	Definitions []DefinitionRecord `json:"definitions"`
	References  []ReferenceRecord  `json:"references"`
}

// Restore replays a snapshot into the index, as if the file had been indexed
// again with the same plugin chain.
func (x *Index) Restore(snap *FileSnapshot) error {
	for _, rec := range snap.Definitions {
		if rec.Name == "" || rec.FullName == "" || rec.Kind == "" {
			return fmt.Errorf("invalid definition record in %s", snap.Path)
		}
	}
	for _, rec := range snap.Definitions {
		d := newDefinition(rec.Kind, rec.Name, rec.FullName, rec.Owner, rec.Location, rec.Visibility)
		d.superclass = rec.Superclass
		if rec.Ignored {
			d.ignored.Store(true)
		}
		x.addDefinition(d)
	}
	for _, rec := range snap.References {
		x.addReference(newReference(rec.Name, rec.Kind, rec.Location, rec.Origin))
	}
	return nil
}

func recordOf(d *Definition) DefinitionRecord {
	return DefinitionRecord{
		Kind:       d.kind,
		Name:       d.name,
		FullName:   d.fullName,
		Owner:      d.owner,
		Superclass: d.superclass,
		Location:   d.location,
		Visibility: d.Visibility(),
		Ignored:    d.Ignored(),
	}
}
