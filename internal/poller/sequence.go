package poller

import "sync/atomic"

// Sequence orders in-flight status fetches so a slow response can never
// overwrite a newer one. Each fetch takes a generation from Next before the
// request goes out and calls Commit before applying the result; Commit
// refuses generations older than the newest already applied.
type Sequence struct {
	issued  atomic.Uint64
	applied atomic.Uint64
}

// Next issues the generation for a new fetch.
func (s *Sequence) Next() uint64 {
	return s.issued.Add(1)
}

// Commit reports whether a fetch of generation gen may apply its snapshot,
// and records it as the newest applied if so.
func (s *Sequence) Commit(gen uint64) bool {
	for {
		cur := s.applied.Load()
		if gen <= cur {
			return false
		}
		if s.applied.CompareAndSwap(cur, gen) {
			return true
		}
	}
}
