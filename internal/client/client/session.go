package client

import "sync"

// DefaultSessionParam is the query parameter carrying the session id.
const DefaultSessionParam = "sid"

// Session holds the per-client session id, its query parameter name and the
// call counter.
type Session struct {
	mu     sync.Mutex
	sid    string
	param  string
	callID int64
}

// next reserves the id of a new logical call and snapshots the session id
// it should carry.
func (s *Session) next() (id int64, sid, param string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callID++
	param = s.param
	if param == "" {
		param = DefaultSessionParam
	}
	return s.callID, s.sid, param
}

// Set replaces the session id. An empty param restores the default name.
func (s *Session) Set(sid, param string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sid = sid
	s.param = param
}

func (s *Session) SID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sid
}

// CallID returns the id of the most recent call, zero before the first.
func (s *Session) CallID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callID
}
