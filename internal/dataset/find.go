package dataset

import (
	"sort"
	"strings"
)

// Match is one architecture matched by FindStrings.
type Match struct {
	ID          string
	NB201String string
	Canonical   bool
}

// FindStrings searches architecture strings by case-insensitive substring
// matching. All query tokens must match (AND semantics). Results are ordered
// by numeric id; limit <= 0 means no limit.
func (x *Index) FindStrings(query string, limit int) []Match {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []Match{}
	}

	var out []Match
	for id, e := range x.ids {
		blob := strings.ToLower(e.NB201String)
		ok := true
		for _, tok := range tokens {
			if !strings.Contains(blob, tok) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		out = append(out, Match{ID: id, NB201String: e.NB201String, Canonical: e.Isomorph == id})
	}

	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func tokenize(q string) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	parts := strings.Fields(q)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
