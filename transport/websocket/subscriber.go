package websocket

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/grid-client/game/service"
	"go.uber.org/zap"
)

const (
	// Time allowed to write the close frame to the peer.
	writeWait = 2 * time.Second

	// Time allowed for the opening handshake.
	handshakeTimeout = 10 * time.Second

	// Maximum snapshot size accepted from the server.
	maxMessageSize = 4 << 20
)

// ErrStreamClosed is returned by Err once the subscription was closed locally
var ErrStreamClosed = errors.New("map stream closed")

var _ service.StreamDialer = (*Dialer)(nil)

// Dialer opens map stream subscriptions against one URL
type Dialer struct {
	url    string
	dialer *websocket.Dialer
	log    *zap.SugaredLogger
	onErr  func(error)
}

// NewDialer creates a dialer for the stream at url
func NewDialer(url string, log *zap.SugaredLogger) *Dialer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Dialer{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
			ReadBufferSize:   4096,
			WriteBufferSize:  1024,
		},
		log: log,
	}
}

// OnError registers a hook called for dial and read failures that were not
// caused by Close. It must be set before Subscribe.
func (d *Dialer) OnError(fn func(error)) {
	d.onErr = fn
}

// Subscribe starts dialing in the background
func (d *Dialer) Subscribe(onSnapshot func(service.MapSnapshot), onOpen func()) service.Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go sub.run(ctx, d, onSnapshot, onOpen)
	return sub
}

// Subscription is one map stream connection
type Subscription struct {
	mu     sync.Mutex
	raw    net.Conn // underlying TCP connection, set as soon as it is dialed
	conn   *websocket.Conn
	closed bool
	err    error

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// run dials, then pumps frames to onSnapshot until the connection ends
func (s *Subscription) run(ctx context.Context, d *Dialer, onSnapshot func(service.MapSnapshot), onOpen func()) {
	defer close(s.done)

	// Each subscription dials through its own copy so the raw connection can
	// be closed while the handshake is still in progress.
	dialer := *d.dialer
	dialer.NetDialContext = s.netDial

	conn, _, err := dialer.DialContext(ctx, d.url, nil)
	if err != nil {
		if s.isClosed() {
			d.log.Debugw("map stream dial abandoned", "url", d.url)
			return
		}
		s.fail(d, err)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		// Close ran while the handshake was finishing
		conn.Close()
		d.log.Debugw("map stream closed before open", "url", d.url)
		return
	}
	s.conn = conn
	s.mu.Unlock()

	d.log.Infow("map stream opened", "url", d.url)
	if onOpen != nil {
		onOpen()
	}

	conn.SetReadLimit(maxMessageSize)
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if s.isClosed() {
				d.log.Debugw("map stream reader stopped", "url", d.url)
				return
			}
			s.mu.Lock()
			s.conn = nil
			s.mu.Unlock()
			conn.Close()
			s.fail(d, err)
			return
		}

		if messageType != websocket.TextMessage {
			d.log.Debugw("ignoring non-text frame", "type", messageType, "bytes", len(payload))
			continue
		}

		if onSnapshot != nil {
			onSnapshot(service.MapSnapshot(payload))
		}
	}
}

// netDial records the raw connection so Close can abort the handshake
func (s *Subscription) netDial(ctx context.Context, network, addr string) (net.Conn, error) {
	var nd net.Dialer
	raw, err := nd.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		raw.Close()
		return nil, ErrStreamClosed
	}
	s.raw = raw
	return raw, nil
}

func (s *Subscription) fail(d *Dialer, err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		d.log.Infow("map stream closed by server", "url", d.url, "error", err)
	} else {
		d.log.Warnw("map stream failed", "url", d.url, "error", err)
	}
	if d.onErr != nil {
		d.onErr(err)
	}
}

func (s *Subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Err reports why the stream ended: nil while it is live, ErrStreamClosed
// after Close, or the transport error that ended it.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	return s.err
}

// Done is closed once the reader goroutine has exited
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close cancels a pending dial or closes the live connection and waits for
// the reader to exit. Later calls return the first call's result.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		conn, raw := s.conn, s.raw
		s.mu.Unlock()

		s.cancel()

		switch {
		case conn != nil:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.closeErr = err
			}
		case raw != nil:
			// Handshake in flight: dropping the socket makes the dial fail
			raw.Close()
		}
	})

	<-s.done
	return s.closeErr
}
