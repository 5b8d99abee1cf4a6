package reconcile

import (
	"sort"

	"github.com/starford/docpress/internal/models"
	"github.com/starford/docpress/internal/naming"
)

// candidates is the set of outputs that will be deleted unless a source
// claims them. Outputs are joined to sources on the exact hash field of
// their name; names that do not parse can never be claimed.
type candidates struct {
	names  map[string]struct{}
	byHash map[string][]string
}

func newCandidates(outputs []models.FileEntry, ext string) *candidates {
	c := &candidates{
		names:  make(map[string]struct{}, len(outputs)),
		byHash: make(map[string][]string, len(outputs)),
	}
	for _, o := range outputs {
		c.names[o.Name] = struct{}{}
		if n, ok := naming.Parse(o.Name, ext); ok {
			c.byHash[n.Hash] = append(c.byHash[n.Hash], o.Name)
		}
	}
	return c
}

// take claims an output for hash, preferring one named exactly preferred.
// Other outputs with the same hash stay candidates.
func (c *candidates) take(hash, preferred string) (string, bool) {
	names := c.byHash[hash]
	if len(names) == 0 {
		return "", false
	}
	i := 0
	for j, n := range names {
		if n == preferred {
			i = j
			break
		}
	}
	name := names[i]
	c.byHash[hash] = append(names[:i:i], names[i+1:]...)
	delete(c.names, name)
	return name, true
}

// remaining returns the unclaimed outputs, sorted.
func (c *candidates) remaining() []string {
	out := make([]string, 0, len(c.names))
	for n := range c.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
