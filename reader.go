package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoRequest means the peer closed the stream before sending a byte.
var ErrNoRequest = errors.New("connection closed before request line")

// MalformedRequestError is returned for a request line that does not carry
// both a method and a target.
type MalformedRequestError struct {
	Line string
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("malformed request line: %q", e.Line)
}

func newBufioReader(r io.Reader) *bufio.Reader {
	if casted, ok := r.(*bufio.Reader); ok {
		return casted
	}
	return bufio.NewReader(r)
}

// RequestReader reads the request line of a single request. Header lines
// that follow it are never consumed.
type RequestReader struct {
	r *bufio.Reader
}

func NewRequestReader(r io.Reader) *RequestReader {
	return &RequestReader{newBufioReader(r)}
}

// readLine returns one line without its terminator. A line cut short by EOF
// is returned as is; a line cut short by any other error is discarded.
func (r *RequestReader) readLine() (string, error) {
	line, err := r.r.ReadString('\n')
	if err == io.EOF {
		if len(line) == 0 {
			return "", ErrNoRequest
		}
		err = nil
	}
	if err != nil {
		return "", fmt.Errorf("Failed to read request line: %w", err)
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func (r *RequestReader) ReadRequest() (*Request, error) {
	rl, err := r.readLine()
	if err != nil {
		return nil, err
	}
	return parseRequestLine(rl)
}

func parseRequestLine(rl string) (*Request, error) {
	fields := strings.Fields(rl)
	if len(fields) < 2 {
		return nil, &MalformedRequestError{rl}
	}
	req := &Request{
		RawMethod: strings.ToUpper(fields[0]),
		Target:    strings.ToLower(fields[1]),
	}
	req.Method = ParseMethod(req.RawMethod)
	if len(fields) > 2 {
		req.Version = fields[2]
	}
	return req, nil
}
