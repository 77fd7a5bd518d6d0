package session

type staticErr string

func (e staticErr) Error() string { return string(e) }

const (
	// ErrGameNotFound means no game is stored under the id, or it expired.
	ErrGameNotFound = staticErr("game not found")
	// ErrConcurrentUpdate means another command on the same game committed
	// first. The caller may retry.
	ErrConcurrentUpdate = staticErr("concurrent update, retry")
	// ErrAdvisorUnavailable means no engine is configured or it gave no
	// usable move.
	ErrAdvisorUnavailable = staticErr("advisor unavailable")
)
