// Package store implements the in-memory tuple space container: an
// ordered multiset of concrete tuples
// supporting add, template-matching read, and template-matching take,
// with deterministic tie-breaking by binary order and blocking waiters
// woken on every successful add.
package store

import (
	"sort"
	"sync"

	"github.com/julianuziemblo/tuple-space/tuple"
)

// Store is safe for concurrent use by multiple goroutines. Its only
// state is the tuple set and the index over it -- there is no
// per-client state here.
type Store struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tuples []tuple.Tuple    // kept sorted by tuple.Compare
	byName map[string][]int // name -> indices into tuples, for the same-name fast path
}

// New returns an empty Store.
func New() *Store {
	s := &Store{byName: make(map[string][]int)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Add inserts a concrete tuple. A tuple whose binary encoding already
// matches one in the store is a duplicate and is silently dropped.
// Add never fails and wakes any blocked
// Read/Take waiters so they can re-check their template.
func (s *Store) Add(t tuple.Tuple) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := sort.Search(len(s.tuples), func(i int) bool {
		return tuple.Compare(s.tuples[i], t) >= 0
	})
	if i < len(s.tuples) && tuple.Equal(s.tuples[i], t) {
		return
	}
	s.tuples = append(s.tuples, tuple.Tuple{})
	copy(s.tuples[i+1:], s.tuples[i:])
	s.tuples[i] = t
	s.reindex()
	s.cond.Broadcast()
}

// Read returns, without removing it, the binary-smallest stored tuple
// that matches template, and true. It returns false immediately if
// nothing matches right now -- non-blocking probe semantics; blocking
// RD/IN behavior lives in BlockingRead/BlockingTake below, which the
// dispatch package uses for the RD/IN opcodes.
func (s *Store) Read(template tuple.Tuple) (tuple.Tuple, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstMatchLocked(template)
}

// Take returns and removes the binary-smallest stored tuple that
// matches template. It returns false immediately if nothing matches.
func (s *Store) Take(template tuple.Tuple) (tuple.Tuple, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.firstMatchIndexLocked(template)
	if !ok {
		return tuple.Tuple{}, false
	}
	matched := s.tuples[i]
	s.tuples = append(s.tuples[:i], s.tuples[i+1:]...)
	s.reindex()
	return matched, true
}

// BlockingRead waits until a tuple matching template is available and
// returns it without removing it. It returns false only if cancel is
// closed before a match appears.
func (s *Store) BlockingRead(template tuple.Tuple, cancel <-chan struct{}) (tuple.Tuple, bool) {
	return s.blockingMatch(template, cancel, func(t tuple.Tuple) (tuple.Tuple, bool) {
		return s.firstMatchLocked(t)
	})
}

// BlockingTake waits until a tuple matching template is available,
// removes it, and returns it. It returns false only if cancel is
// closed before a match appears.
func (s *Store) BlockingTake(template tuple.Tuple, cancel <-chan struct{}) (tuple.Tuple, bool) {
	return s.blockingMatch(template, cancel, func(t tuple.Tuple) (tuple.Tuple, bool) {
		i, ok := s.firstMatchIndexLocked(t)
		if !ok {
			return tuple.Tuple{}, false
		}
		matched := s.tuples[i]
		s.tuples = append(s.tuples[:i], s.tuples[i+1:]...)
		s.reindex()
		return matched, true
	})
}

// blockingMatch implements the suspend-until-match contract: attempt
// runs under the store's lock and is retried every
// time Add broadcasts, until it succeeds or cancel fires. A goroutine
// watches cancel and wakes the condition once so a cancelled waiter
// does not sleep forever with no pending Add.
func (s *Store) blockingMatch(template tuple.Tuple, cancel <-chan struct{}, attempt func(tuple.Tuple) (tuple.Tuple, bool)) (tuple.Tuple, bool) {
	done := make(chan struct{})
	defer close(done)
	if cancel != nil {
		go func() {
			select {
			case <-cancel:
				s.mu.Lock()
				s.cond.Broadcast()
				s.mu.Unlock()
			case <-done:
			}
		}()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if t, ok := attempt(template); ok {
			return t, true
		}
		select {
		case <-cancel:
			return tuple.Tuple{}, false
		default:
		}
		s.cond.Wait()
	}
}

// firstMatchLocked returns the binary-smallest match, assuming s.mu is
// held. Traversal walks tuples in ascending binary order, using
// byName to skip differently-named tuples when the
// template's name narrows the search.
func (s *Store) firstMatchLocked(template tuple.Tuple) (tuple.Tuple, bool) {
	i, ok := s.firstMatchIndexLocked(template)
	if !ok {
		return tuple.Tuple{}, false
	}
	return s.tuples[i], true
}

func (s *Store) firstMatchIndexLocked(template tuple.Tuple) (int, bool) {
	indices, ok := s.byName[template.Name()]
	if !ok {
		return 0, false
	}
	// indices is already ascending because reindex walks s.tuples in
	// order.
	for _, i := range indices {
		if s.tuples[i].Matches(template) {
			return i, true
		}
	}
	return 0, false
}

// reindex rebuilds byName after a mutation. The store is not expected
// to hold enough tuples for the O(n) rebuild to matter.
func (s *Store) reindex() {
	for k := range s.byName {
		delete(s.byName, k)
	}
	for i, t := range s.tuples {
		s.byName[t.Name()] = append(s.byName[t.Name()], i)
	}
}

// Len reports the number of tuples currently stored, for diagnostics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tuples)
}
