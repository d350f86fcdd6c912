package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// MetaFileName is the manifest file expected at the dataset root.
const MetaFileName = "meta.json"

// archMeta is one entry of the meta.json "ids" table.
type archMeta struct {
	NB201String string `json:"nb201-string"`
	Isomorph    string `json:"isomorph"`
}

type metaFile struct {
	IDs map[string]archMeta `json:"ids"`
}

// Index is the loaded architecture manifest. It is built once by LoadIndex
// and never mutated afterwards, so it is safe to share across readers.
type Index struct {
	ids          map[string]archMeta
	stringToID   map[string]string
	canonicalIDs []string
}

// LoadIndex reads <root>/meta.json and builds the derived lookup tables.
//
// Duplicate nb201 strings across distinct ids are resolved last-write-wins
// over ascending numeric id order, so the highest id owns the string. The
// manifest is not expected to contain duplicates, but JSON objects give no
// iteration order to lean on, so the winner is pinned explicitly.
func LoadIndex(root string) (*Index, error) {
	path := filepath.Join(root, MetaFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest %s: %w", path, err)
	}
	var m metaFile
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON %s: %w", path, err)
	}
	if len(m.IDs) == 0 {
		return nil, fmt.Errorf("manifest %s has no ids table", path)
	}

	order := make([]string, 0, len(m.IDs))
	for id := range m.IDs {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool { return idLess(order[i], order[j]) })

	idx := &Index{
		ids:        m.IDs,
		stringToID: make(map[string]string, len(m.IDs)),
	}
	for _, id := range order {
		e := m.IDs[id]
		idx.stringToID[e.NB201String] = id
		if e.Isomorph == id {
			idx.canonicalIDs = append(idx.canonicalIDs, id)
		}
	}
	return idx, nil
}

// Len returns the number of architectures in the manifest.
func (x *Index) Len() int { return len(x.ids) }

// ResolveCanonical returns the canonical representative for id: the id whose
// evaluation results stand in for every architecture isomorphic to it. A
// canonical id resolves to itself.
func (x *Index) ResolveCanonical(id string) (string, error) {
	e, ok := x.ids[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownID, id)
	}
	return e.Isomorph, nil
}

// IDToString returns the NAS-Bench-201 string encoding of id's cell.
func (x *Index) IDToString(id string) (string, error) {
	e, ok := x.ids[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownID, id)
	}
	return e.NB201String, nil
}

// StringToID returns the id registered for a NAS-Bench-201 string. When the
// manifest maps several ids to the same string, only the highest id is
// retrievable (see LoadIndex).
func (x *Index) StringToID(s string) (string, error) {
	id, ok := x.stringToID[s]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownString, s)
	}
	return id, nil
}

// CanonicalIDs returns the non-isomorphic ids (isomorph == id), in ascending
// numeric order.
func (x *Index) CanonicalIDs() []string { return clone(x.canonicalIDs) }

// IDs returns every id in the manifest, in ascending numeric order.
func (x *Index) IDs() []string {
	out := make([]string, 0, len(x.ids))
	for id := range x.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i], out[j]) })
	return out
}

// idLess orders string-encoded integer ids numerically, falling back to
// lexicographic order for non-numeric ids.
func idLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
