package daemon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/linkforge/doublets/pkg/links"
)

var _ links.Store = (*Client)(nil)

// Client implements links.Store by forwarding every operation to a daemon
// over the Unix socket. The connection carries one request at a time; the
// mutex serializes round trips, which is the per-id linearization the mixed
// caller set needs (the daemon's own store orders cross-client operations).
type Client struct {
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	closed bool
}

// Dial connects to the daemon at the given socket path.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon at %s: %w: %v", socketPath, links.ErrStoreUnavailable, err)
	}
	c := &Client{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, 64*1024),
	}
	if _, err := c.send(Request{Method: MethodPing}); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Create forwards a create call.
func (c *Client) Create(source, target links.LinkID) (links.Link, error) {
	resp, err := c.send(Request{Method: MethodCreate, Source: uint64(source), Target: uint64(target)})
	if err != nil {
		return links.Link{}, err
	}
	if resp.Link == nil {
		return links.Link{}, fmt.Errorf("create: daemon returned no link: %w", links.ErrStoreUnavailable)
	}
	return fromWire(*resp.Link), nil
}

// Read forwards a read call.
func (c *Client) Read(id links.LinkID) (links.Link, error) {
	resp, err := c.send(Request{Method: MethodRead, ID: uint64(id)})
	if err != nil {
		return links.Link{}, err
	}
	if resp.Link == nil {
		return links.Link{}, fmt.Errorf("read: daemon returned no link: %w", links.ErrStoreUnavailable)
	}
	return fromWire(*resp.Link), nil
}

// Scan fetches the full batch in one round trip and visits it locally.
// Laziness is lost across the wire; Break still stops local visiting.
func (c *Client) Scan(visit func(links.Link) bool) error {
	resp, err := c.send(Request{Method: MethodScan})
	if err != nil {
		return err
	}
	for _, w := range resp.Links {
		if !visit(fromWire(w)) {
			return nil
		}
	}
	return nil
}

// Update forwards an update call.
func (c *Client) Update(id, source, target links.LinkID) (links.Link, error) {
	resp, err := c.send(Request{Method: MethodUpdate, ID: uint64(id), Source: uint64(source), Target: uint64(target)})
	if err != nil {
		return links.Link{}, err
	}
	if resp.Link == nil {
		return links.Link{}, fmt.Errorf("update: daemon returned no link: %w", links.ErrStoreUnavailable)
	}
	return fromWire(*resp.Link), nil
}

// Delete forwards a delete call.
func (c *Client) Delete(id links.LinkID) error {
	_, err := c.send(Request{Method: MethodDelete, ID: uint64(id)})
	return err
}

// Close disconnects from the daemon. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// send performs one request/response round trip.
func (c *Client) send(req Request) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Response{}, fmt.Errorf("%s: %w", req.Method, links.ErrStoreUnavailable)
	}

	req.ReqID = uuid.NewString()
	out, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}
	out = append(out, '\n')
	if _, err := c.conn.Write(out); err != nil {
		return Response{}, fmt.Errorf("%s: %w: %v", req.Method, links.ErrStoreUnavailable, err)
	}

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w: %v", req.Method, links.ErrStoreUnavailable, err)
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("%s: %w: bad response: %v", req.Method, links.ErrStoreUnavailable, err)
	}
	if resp.ReqID != req.ReqID {
		return Response{}, fmt.Errorf("%s: %w: response for %s, want %s", req.Method, links.ErrStoreUnavailable, resp.ReqID, req.ReqID)
	}
	if !resp.OK {
		return Response{}, fmt.Errorf("%s: %w", req.Method, errOf(resp.Kind, resp.Error))
	}
	return resp, nil
}
