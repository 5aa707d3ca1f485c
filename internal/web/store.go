package web

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jmylchreest/folio/pkg/folio"
)

// store keeps the most recently used results in memory so pages can be
// downloaded after they are shown. A download refreshes its entry.
type store struct {
	cache *lru.Cache[string, *folio.Result]
}

func newStore(size int) *store {
	if size < 1 {
		size = 1
	}
	// New only fails for a non-positive size.
	cache, _ := lru.New[string, *folio.Result](size)
	return &store{cache: cache}
}

func (s *store) put(r *folio.Result) {
	s.cache.Add(r.RunID, r)
}

func (s *store) get(id string) (*folio.Result, bool) {
	return s.cache.Get(id)
}

func (s *store) len() int {
	return s.cache.Len()
}
