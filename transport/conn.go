// Package transport connects the engine to a game server over TCP. It strips
// telnet negotiation, splits the stream into lines and writes commands from a
// bounded queue that never blocks the caller.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by Run when the connection was closed locally.
var ErrClosed = errors.New("transport closed")

// drainTimeout bounds how long Disconnect waits for queued commands.
const drainTimeout = 2 * time.Second

// Options configures a connection. Zero values take defaults.
type Options struct {
	DialTimeout time.Duration
	SendQueue   int
}

func (o Options) withDefaults() Options {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.SendQueue <= 0 {
		o.SendQueue = 64
	}
	return o
}

// Conn is a line-oriented game session. It satisfies engine.Session.
type Conn struct {
	conn  net.Conn
	log   *zap.Logger
	lines chan string
	queue chan string

	running   atomic.Bool
	lost      chan struct{}
	lostOnce  sync.Once
	closing   chan struct{}
	closeOnce sync.Once
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string, opts Options, log *zap.Logger) (*Conn, error) {
	opts = opts.withDefaults()
	d := net.Dialer{Timeout: opts.DialTimeout}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return New(nc, opts, log), nil
}

// New wraps an established connection. log may be nil.
func New(nc net.Conn, opts Options, log *zap.Logger) *Conn {
	opts = opts.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Conn{
		conn:    nc,
		log:     log.Named("transport").With(zap.String("remote", nc.RemoteAddr().String())),
		lines:   make(chan string, 256),
		queue:   make(chan string, opts.SendQueue),
		lost:    make(chan struct{}),
		closing: make(chan struct{}),
	}
}

// Lines delivers received lines. It is closed when the reader stops.
func (c *Conn) Lines() <-chan string { return c.lines }

// Lost is closed once the connection is gone for any reason.
func (c *Conn) Lost() <-chan struct{} { return c.lost }

// Send enqueues cmd for the writer. A full queue drops the command.
func (c *Conn) Send(cmd string) {
	if isClosing(c.lost) || isClosing(c.closing) {
		c.log.Debug("send after close dropped", zap.String("cmd", cmd))
		return
	}
	select {
	case c.queue <- cmd:
	default:
		c.log.Warn("send queue full, command dropped", zap.String("cmd", cmd))
	}
}

// Disconnect closes the connection after the writer has flushed the
// commands already queued, so a final "stop" still reaches the server. The
// flush is bounded by drainTimeout. Without a running writer the connection
// closes at once. Safe to call more than once.
func (c *Conn) Disconnect() {
	c.closeOnce.Do(func() { close(c.closing) })
	if !c.running.Load() {
		_ = c.conn.Close()
		c.markLost()
	}
}

func (c *Conn) markLost() {
	c.lostOnce.Do(func() { close(c.lost) })
}

// Run pumps the connection until ctx ends, the peer closes, or Disconnect is
// called. It returns ctx.Err(), ErrClosed, or the I/O error that ended the
// session.
func (c *Conn) Run(ctx context.Context) error {
	c.running.Store(true)
	defer c.running.Store(false)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.readLoop(gctx) })
	g.Go(func() error {
		// The writer owns the close, so a Disconnect flushes first.
		err := c.writeLoop(gctx)
		_ = c.conn.Close()
		return err
	})

	err := g.Wait()
	c.markLost()
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case isClosing(c.closing):
		return ErrClosed
	}
	return err
}

func (c *Conn) readLoop(ctx context.Context) error {
	defer close(c.lines)
	defer c.markLost()

	var split lineSplitter
	var stop bool
	emit := func(line string) {
		if stop {
			return
		}
		select {
		case c.lines <- line:
		case <-ctx.Done():
			stop = true
		}
	}

	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			split.feed(buf[:n], emit)
			split.flushPrompt(emit)
			if stop {
				return ctx.Err()
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.log.Info("server closed connection")
				return fmt.Errorf("server closed connection: %w", err)
			}
			if isClosing(c.closing) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
	}
}

func (c *Conn) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.lost:
			return nil
		case <-c.closing:
			c.drain()
			return nil
		case cmd := <-c.queue:
			if err := c.write(cmd); err != nil {
				if isClosing(c.closing) || ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// drain writes whatever is still queued, giving up at drainTimeout.
func (c *Conn) drain() {
	_ = c.conn.SetWriteDeadline(time.Now().Add(drainTimeout))
	for {
		select {
		case cmd := <-c.queue:
			if err := c.write(cmd); err != nil {
				c.log.Warn("queued command lost on disconnect", zap.String("cmd", cmd), zap.Error(err))
				return
			}
		default:
			return
		}
	}
}

func (c *Conn) write(cmd string) error {
	if _, err := io.WriteString(c.conn, cmd+"\r\n"); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	c.log.Debug("wrote", zap.String("cmd", cmd))
	return nil
}

func isClosing(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
