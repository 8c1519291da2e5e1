package domain

// Session is the mutable aggregate derived from events sharing a session
// identifier. It is created on the first event carrying the identifier and
// merged on every subsequent one; the bounce flag is monotonic (1 -> 0 only).
type Session struct {
	SessionID  string
	UserID     string
	ProjectID  string
	StartedAt  int64 // epoch milliseconds
	EndedAt    int64
	Duration   int64 // EndedAt - StartedAt, recomputed on every merge
	EntryPage  *string
	ExitPage   *string
	EventCount int64
	Bounce     int64
	Date       string
}
