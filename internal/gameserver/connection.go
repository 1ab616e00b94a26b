package gameserver

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alxayo/go-arcade/internal/bufpool"
	"github.com/alxayo/go-arcade/internal/logging"
)

// UndeterminedPlayerID is the sentinel PlayerID every Connection starts
// with, before any handler calls UpdatePlayerID.
const UndeterminedPlayerID = "[Undetermined]"

// Connection is one accepted socket, driven by a single read goroutine that
// reads, dispatches, and writes strictly in receive order.
type Connection struct {
	id         string
	netConn    net.Conn
	remoteAddr net.Addr
	acceptedAt time.Time
	log        *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	playerMu sync.Mutex
	playerID string

	writeMu sync.Mutex
}

var connCounter uint64

func nextConnID() string {
	return fmt.Sprintf("conn-%06d", atomic.AddUint64(&connCounter, 1))
}

// newConnection wraps raw with bookkeeping and a child context derived from
// parent, cancelled independently of sibling connections.
func newConnection(parent context.Context, raw net.Conn, log *logging.Logger) *Connection {
	ctx, cancel := context.WithCancel(parent)
	return &Connection{
		id:         nextConnID(),
		netConn:    raw,
		remoteAddr: raw.RemoteAddr(),
		acceptedAt: time.Now(),
		log:        log.WithTag("gameserver.connection"),
		ctx:        ctx,
		cancel:     cancel,
		playerID:   UndeterminedPlayerID,
	}
}

// ID returns the connection's logical identifier.
func (c *Connection) ID() string { return c.id }

// RemoteAddress returns the peer's network address.
func (c *Connection) RemoteAddress() net.Addr { return c.remoteAddr }

// PlayerID returns the connection's current player id, "[Undetermined]"
// until a handler calls UpdatePlayerID.
func (c *Connection) PlayerID() string {
	c.playerMu.Lock()
	defer c.playerMu.Unlock()
	return c.playerID
}

// updatePlayerID transitions the connection's player id. Intended to be
// called exactly once per connection, by the owning connection's own
// goroutine, but guarded so the metrics/logging path can read PlayerID
// concurrently without racing.
func (c *Connection) updatePlayerID(newID string) {
	c.playerMu.Lock()
	c.playerID = newID
	c.playerMu.Unlock()
}

// Read performs one blocking socket read into a pooled buffer sized to n.
// The caller owns the returned slice and is responsible for returning it to
// bufpool via bufpool.Put once done.
func (c *Connection) Read(n int) (int, []byte, error) {
	buf := bufpool.Get(n)
	read, err := c.netConn.Read(buf)
	if err != nil {
		bufpool.Put(buf)
		return read, nil, err
	}
	return read, buf[:read], nil
}

// Write sends b to the peer. Writes are serialized against other Writes on
// the same connection (a handler may call SendRaw from within Handle while
// the read loop's own reply path also writes).
func (c *Connection) Write(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.netConn.Write(b)
	return err
}

// sendRaw is the HandlerContext.SendRaw backing function: it writes b and,
// if logOutput is set, logs the send at debug (full payload if logFull).
func (c *Connection) sendRaw(b []byte, logOutput, logFull bool) error {
	err := c.Write(b)
	if logOutput {
		if logFull || c.log.LogFull() {
			c.log.Debug(func() string { return fmt.Sprintf("sent %d bytes: %x", len(b), b) })
		} else {
			c.log.Debug(func() string { return fmt.Sprintf("sent %d bytes", len(b)) })
		}
	}
	return err
}

// Shutdown cancels the connection's context and closes the socket,
// unblocking any in-flight read or write. It does not wait for the
// connection's goroutine to exit: nothing adds to wg, so Wait returns at
// once.
func (c *Connection) Shutdown() error {
	c.cancel()
	err := c.netConn.Close()
	c.wg.Wait()
	return err
}
