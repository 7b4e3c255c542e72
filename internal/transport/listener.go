package transport

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
)

// Listener accepts inbound channels on the host's fixed port.
type Listener struct {
	l   net.Listener
	log *zap.Logger
}

// Listen binds the host port on all interfaces.
func Listen(port int, log *zap.Logger) (*Listener, error) {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("transport: listen on %d: %w", port, err)
	}
	return &Listener{l: l, log: log}, nil
}

// Addr is the bound address.
func (ln *Listener) Addr() net.Addr { return ln.l.Addr() }

// Accept blocks for the next client channel. It returns net.ErrClosed
// after Close.
func (ln *Listener) Accept() (*Channel, error) {
	conn, err := ln.l.Accept()
	if err != nil {
		return nil, err
	}
	ln.log.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))
	return NewChannel(conn, ln.log), nil
}

// Serve accepts until ctx is cancelled or the listener closes, handing
// each channel to handle on its own goroutine.
func (ln *Listener) Serve(ctx context.Context, handle func(*Channel)) error {
	go func() {
		<-ctx.Done()
		_ = ln.l.Close()
	}()
	for {
		ch, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go handle(ch)
	}
}

// Close stops accepting. Established channels are unaffected.
func (ln *Listener) Close() error { return ln.l.Close() }
