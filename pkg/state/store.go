package state

import "sync"

// Middleware observes an action before it is reduced. It receives the state
// the action will be applied to.
type Middleware func(prev AppState, action Action)

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithMiddleware appends middleware run, in order, before each reduction.
func WithMiddleware(mw ...Middleware) StoreOption {
	return func(s *Store) {
		s.middleware = append(s.middleware, mw...)
	}
}

// Store owns one AppState and serialises dispatches against it.
type Store struct {
	mu          sync.Mutex
	state       AppState
	reducer     Reducer
	middleware  []Middleware
	subscribers map[int]func(AppState)
	nextID      int
}

// NewStore returns a Store seeded with initial. A nil reducer uses Root.
func NewStore(initial AppState, reducer Reducer, opts ...StoreOption) *Store {
	if reducer == nil {
		reducer = Root
	}
	s := &Store{
		state:       initial,
		reducer:     reducer,
		subscribers: map[int]func(AppState){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Dispatch reduces actions in order and notifies subscribers once with the
// resulting state, which is also returned.
func (s *Store) Dispatch(actions ...Action) AppState {
	s.mu.Lock()
	for _, action := range actions {
		for _, mw := range s.middleware {
			mw(s.state, action)
		}
		s.state = s.reducer(s.state, action)
	}
	next := s.state
	subs := make([]func(AppState), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if len(actions) > 0 {
		for _, fn := range subs {
			fn(next)
		}
	}
	return next
}

// State returns the current state. Reducers never share slices between
// states, so the snapshot stays valid after later dispatches.
func (s *Store) State() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every dispatch. The returned function
// removes it.
func (s *Store) Subscribe(fn func(AppState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}
