package main

import "strings"

type Method int

const (
	MethodOther Method = iota
	MethodGet
	MethodHead
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodHead:
		return "HEAD"
	}
	return "OTHER"
}

// ParseMethod classifies a request-line token case-insensitively.
func ParseMethod(token string) Method {
	switch strings.ToUpper(token) {
	case "GET":
		return MethodGet
	case "HEAD":
		return MethodHead
	}
	return MethodOther
}

type HeaderField struct {
	Name  string
	Value string
}

// Ordered, unlike http.Header. Fields go on the wire in slice order.
type HTTPHeader []HeaderField

func (h *HTTPHeader) Add(name, value string) {
	*h = append(*h, HeaderField{name, value})
}

func (h HTTPHeader) Get(name string) (string, bool) {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

type Request struct {
	Method    Method
	RawMethod string // upper-cased first token
	Target    string // lower-cased second token, otherwise verbatim
	Version   string // optional, never validated
}

type Response struct {
	Version string
	Status  int
	Phrase  string
	Headers HTTPHeader
}

type Status struct {
	Code   int
	Phrase string
}

var (
	StatusOK             = Status{200, "OK"}
	StatusNotFound       = Status{404, "File Not Found"}
	StatusNotImplemented = Status{501, "Not Implemented"}
)

const (
	mimeHTML  = "text/html"
	mimePlain = "text/plain"
)

// ContentType maps a resolved file name to its MIME type by suffix only.
func ContentType(name string) string {
	if strings.HasSuffix(name, "htm") || strings.HasSuffix(name, ".html") {
		return mimeHTML
	}
	return mimePlain
}
