// Package transport carries protocol envelopes between two peers over a
// TCP stream. Messages are newline-terminated JSON records; the reader
// buffers until a full record arrives, and records that fail to parse
// are logged and dropped without closing the connection.
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/lanfest/munchkin-lan/internal/protocol"
)

// ErrChannelClosed is returned by Send after the channel shut down.
var ErrChannelClosed = errors.New("transport: channel closed")

// maxRecordBytes bounds one framed message; a full session snapshot with
// logs and dice history fits comfortably.
const maxRecordBytes = 1 << 20

// CloseCause says which side ended the channel.
type CloseCause int

const (
	CloseLocal CloseCause = iota
	CloseRemote
	CloseError
)

func (c CloseCause) String() string {
	switch c {
	case CloseLocal:
		return "local"
	case CloseRemote:
		return "remote"
	default:
		return "error"
	}
}

// CloseInfo is delivered once on Closed().
type CloseInfo struct {
	Cause CloseCause
	Err   error
}

// Channel is one framed bidirectional stream. Inbound envelopes arrive
// on Inbound(); channel teardown is announced exactly once on Closed().
type Channel struct {
	conn    net.Conn
	log     *zap.Logger
	inbound chan protocol.Envelope
	closed  chan CloseInfo

	writeMu     sync.Mutex
	closeOnce   sync.Once
	localClosed chan struct{}
}

// NewChannel wraps an established connection and starts its reader.
func NewChannel(conn net.Conn, log *zap.Logger) *Channel {
	ch := &Channel{
		conn:        conn,
		log:         log,
		inbound:     make(chan protocol.Envelope, 16),
		closed:      make(chan CloseInfo, 1),
		localClosed: make(chan struct{}),
	}
	go ch.readLoop()
	return ch
}

// Dial connects to a host at addr ("ip:port").
func Dial(ctx context.Context, addr string, log *zap.Logger) (*Channel, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewChannel(conn, log), nil
}

// RemoteAddr reports the peer address, for logging.
func (ch *Channel) RemoteAddr() string {
	return ch.conn.RemoteAddr().String()
}

// Send frames and writes one envelope. Safe for concurrent use.
func (ch *Channel) Send(env protocol.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()
	select {
	case <-ch.localClosed:
		return ErrChannelClosed
	default:
	}
	if _, err := ch.conn.Write(data); err != nil {
		return err
	}
	return nil
}

// Inbound delivers parsed envelopes; it is closed when the reader exits.
func (ch *Channel) Inbound() <-chan protocol.Envelope { return ch.inbound }

// Closed delivers the single teardown notification.
func (ch *Channel) Closed() <-chan CloseInfo { return ch.closed }

// Close tears the channel down from this side.
func (ch *Channel) Close() {
	ch.closeOnce.Do(func() { close(ch.localClosed) })
	_ = ch.conn.Close()
}

func (ch *Channel) readLoop() {
	scanner := bufio.NewScanner(ch.conn)
	scanner.Buffer(make([]byte, 64*1024), maxRecordBytes)

scan:
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var env protocol.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			// Malformed record: drop it, keep the stream alive.
			ch.log.Warn("dropping unparseable record",
				zap.String("remote", ch.RemoteAddr()),
				zap.Error(err))
			continue
		}
		select {
		case ch.inbound <- env:
		case <-ch.localClosed:
			// Consumer is gone; stop delivering and tear down.
			break scan
		}
	}

	err := scanner.Err()
	info := CloseInfo{Cause: CloseRemote}
	select {
	case <-ch.localClosed:
		info = CloseInfo{Cause: CloseLocal}
	default:
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
			info = CloseInfo{Cause: CloseError, Err: err}
		}
	}
	ch.closeOnce.Do(func() { close(ch.localClosed) })
	_ = ch.conn.Close()
	close(ch.inbound)
	ch.closed <- info
}
