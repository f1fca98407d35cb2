package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const protocolVersion = "HTTP/1.1"

// newResponse builds the fixed header set, in wire order.
func newResponse(st Status, server, contentType string, length int, now time.Time) *Response {
	res := &Response{
		Version: protocolVersion,
		Status:  st.Code,
		Phrase:  st.Phrase,
	}
	res.Headers.Add("Server", server)
	res.Headers.Add("Date", now.UTC().Format(http.TimeFormat))
	res.Headers.Add("Content-type", contentType)
	res.Headers.Add("Content-length", strconv.Itoa(length))
	return res
}

// WriteResponse writes the status line, the headers and the blank line that
// ends the head. The body is written separately by the caller.
func WriteResponse(w io.Writer, res *Response) error {
	if _, err := fmt.Fprintf(w, "%s %d %s\r\n", res.Version, res.Status, res.Phrase); err != nil {
		return err
	}
	for _, h := range res.Headers {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", h.Name, h.Value); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}
