package chat

// Turn is one user-message/answer exchange within a session. Turns are
// immutable once stored; a session's history only ever grows or is
// deleted whole.
type Turn struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}
