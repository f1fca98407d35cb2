package main

import (
	"bufio"
	"log"
	"net"
	"time"
)

// channel is one accepted connection seen through three buffered views: a
// reader for the request line, a text writer for the response head and a
// binary writer for the body. Both writers feed the same ordered stream, so
// the head must be flushed before the body is written.
type channel struct {
	conn    net.Conn
	reader  *bufio.Reader
	headers *bufio.Writer
	body    *bufio.Writer
	logger  *log.Logger
	closed  bool
}

func newChannel(conn net.Conn, logger *log.Logger) *channel {
	return &channel{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		headers: bufio.NewWriter(conn),
		body:    bufio.NewWriter(conn),
		logger:  logger,
	}
}

func deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

func (c *channel) setReadTimeout(d time.Duration) {
	if err := c.conn.SetReadDeadline(deadline(d)); err != nil {
		c.logger.Printf("W set read deadline: %v", err)
	}
}

func (c *channel) setWriteTimeout(d time.Duration) {
	if err := c.conn.SetWriteDeadline(deadline(d)); err != nil {
		c.logger.Printf("W set write deadline: %v", err)
	}
}

// writeHead writes and flushes the response head.
func (c *channel) writeHead(res *Response) error {
	if err := WriteResponse(c.headers, res); err != nil {
		return err
	}
	return c.headers.Flush()
}

// writeBody writes and flushes the raw body bytes.
func (c *channel) writeBody(b []byte) error {
	if _, err := c.body.Write(b); err != nil {
		return err
	}
	return c.body.Flush()
}

// Close releases every view and then the connection. Each step runs even if
// an earlier one failed; failures are logged, never returned. Only the first
// call has any effect.
func (c *channel) Close() {
	if c.closed {
		return
	}
	c.closed = true

	c.reader.Reset(nil)
	if err := c.headers.Flush(); err != nil {
		c.logger.Printf("E Error closing header stream: %v", err)
	}
	if err := c.body.Flush(); err != nil {
		c.logger.Printf("E Error closing body stream: %v", err)
	}
	if err := c.conn.Close(); err != nil {
		c.logger.Printf("E Error closing connection: %v", err)
	}
}
