package wsapi

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/Cheese-chess-engine/internal/obslog"
	"github.com/park285/Cheese-chess-engine/pkg/chessdto"
)

type WatcherState int

const (
	StateDisconnected WatcherState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateFailed
	// StateFinished means the server closed the stream because the game ended.
	StateFinished
)

func (s WatcherState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	case StateFinished:
		return "finished"
	default:
		return "disconnected"
	}
}

type EventCallback func(ev *chessdto.GameEvent)

type StateCallback func(state WatcherState)

// Watcher follows one game's event stream and reconnects after transport
// failures. Each reconnect starts with a fresh snapshot.
type Watcher struct {
	url string

	conn   *websocket.Conn
	connM  sync.Mutex
	state  WatcherState
	stateM sync.RWMutex

	eventCbs []EventCallback
	stateCbs []StateCallback
	cbM      sync.RWMutex

	maxReconnectAttempts int

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc
}

// NewWatcher watches the stream at url, e.g. ws://host:8081/ws/games/<id>.
func NewWatcher(url string, maxReconnectAttempts int) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		url:                  url,
		state:                StateDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		stopCh:               make(chan struct{}),
		rootCtx:              ctx,
		rootCancel:           cancel,
	}
}

func (w *Watcher) OnEvent(cb EventCallback) {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	w.eventCbs = append(w.eventCbs, cb)
}

func (w *Watcher) OnStateChange(cb StateCallback) {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	w.stateCbs = append(w.stateCbs, cb)
}

func (w *Watcher) State() WatcherState {
	w.stateM.RLock()
	defer w.stateM.RUnlock()
	return w.state
}

func (w *Watcher) Connect(ctx context.Context) error {
	if st := w.State(); st == StateConnected || st == StateConnecting {
		return nil
	}
	w.setState(StateConnecting)
	if err := w.dial(ctx); err != nil {
		w.setState(StateFailed)
		return err
	}
	return nil
}

func (w *Watcher) dial(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, w.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		return err
	}
	w.connM.Lock()
	w.conn = conn
	w.connM.Unlock()
	w.setState(StateConnected)

	w.wg.Add(1)
	go w.listen(conn)
	return nil
}

func (w *Watcher) listen(conn *websocket.Conn) {
	defer w.wg.Done()
	for {
		var ev chessdto.GameEvent
		if err := wsjson.Read(w.rootCtx, conn, &ev); err != nil {
			if w.isStopping() {
				return
			}
			w.closeConn(websocket.StatusGoingAway, "reconnect")
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				w.setState(StateFinished)
				return
			}
			obslog.L().Debug("ws_watch_read_error", zap.String("url", w.url), zap.Error(err))
			w.setState(StateDisconnected)
			w.scheduleReconnect()
			return
		}

		w.cbM.RLock()
		callbacks := append([]EventCallback(nil), w.eventCbs...)
		w.cbM.RUnlock()
		for _, cb := range callbacks {
			cb(&ev)
		}
	}
}

func (w *Watcher) scheduleReconnect() {
	if w.maxReconnectAttempts <= 0 {
		w.setState(StateFailed)
		return
	}
	w.setState(StateReconnecting)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for attempt := 1; attempt <= w.maxReconnectAttempts; attempt++ {
			select {
			case <-w.stopCh:
				return
			case <-time.After(reconnectDelay(attempt)):
			}
			if err := w.dial(w.rootCtx); err == nil {
				return
			}
		}
		w.setState(StateFailed)
	}()
}

func (w *Watcher) setState(state WatcherState) {
	w.stateM.Lock()
	w.state = state
	w.stateM.Unlock()

	w.cbM.RLock()
	callbacks := append([]StateCallback(nil), w.stateCbs...)
	w.cbM.RUnlock()
	for _, cb := range callbacks {
		cb(state)
	}
}

func (w *Watcher) Close(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.closeConn(websocket.StatusNormalClosure, "close")
	w.rootCancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (w *Watcher) closeConn(code websocket.StatusCode, reason string) {
	w.connM.Lock()
	conn := w.conn
	w.conn = nil
	w.connM.Unlock()
	if conn == nil {
		return
	}
	if err := conn.Close(code, reason); err != nil && !errors.Is(err, context.Canceled) {
		_ = conn.CloseNow()
	}
}

func (w *Watcher) isStopping() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

func reconnectDelay(attempt int) time.Duration {
	attempt = min(max(attempt, 1), 6)
	return time.Duration(1<<uint(attempt-1)) * 200 * time.Millisecond
}
