package main

import (
	"errors"
	"net"
	"time"
)

const (
	builtinNotFound     = "404.html"
	builtinNotSupported = "not_supported.html"
)

// Handler serves exactly one request per connection from a document root.
type Handler struct {
	cfg  Config
	root *DocRoot
	now  func() time.Time
}

func NewHandler(cfg Config, root *DocRoot) *Handler {
	return &Handler{cfg: cfg, root: root, now: time.Now}
}

// Serve handles one request on conn and closes it. It takes the ownership of
// |conn| and never reports an error to the caller.
func (h *Handler) Serve(conn net.Conn) {
	w := NewWorker(h, conn)
	w.Start()
}

// Worker owns one connection from the request line to the close.
type Worker struct {
	h  *Handler
	ch *channel

	req         *Request
	name        string
	contentType string
	status      Status
	body        []byte
	length      int
	sendBody    bool

	err      error
	finished bool
}

type stateFunc func(*Worker) stateFunc

func NewWorker(h *Handler, conn net.Conn) *Worker {
	return &Worker{
		h:  h,
		ch: newChannel(conn, h.cfg.Logger),
	}
}

func (w *Worker) Start() {
	defer func() {
		if r := recover(); r != nil {
			w.h.cfg.Logger.Printf("E worker panic: %v", r)
			finishWorker(w)
		}
	}()

	for state := waitForRequest; state != nil; {
		state = state(w)
	}
}

func (w *Worker) infof(format string, v ...interface{}) {
	if w.h.cfg.Verbose {
		w.h.cfg.Logger.Printf("I "+format, v...)
	}
}

func (w *Worker) fail(err error) stateFunc {
	w.err = err
	return abandon
}

// state funcs

func waitForRequest(w *Worker) stateFunc {
	w.ch.setReadTimeout(w.h.cfg.ReadTimeout)
	req, err := NewRequestReader(w.ch.reader).ReadRequest()
	if err != nil {
		return w.fail(err)
	}
	w.req = req
	w.infof("%s %s %s", req.RawMethod, req.Target, req.Version)
	return requestReceived
}

func requestReceived(w *Worker) stateFunc {
	if w.req.Method == MethodOther {
		w.infof("501 Not Implemented: %s method.", w.req.RawMethod)
		return sendNotImplemented
	}

	name, err := w.h.root.Resolve(w.req.Target)
	if err != nil {
		w.h.cfg.Logger.Printf("W %s: %v", w.req.Target, err)
		return sendNotFound
	}
	w.name = name
	w.contentType = ContentType(name)
	return readFile
}

func readFile(w *Worker) stateFunc {
	var err error
	if w.req.Method == MethodGet {
		w.body, err = w.h.root.ReadFile(w.name)
		w.length = len(w.body)
		w.sendBody = true
	} else {
		var size int64
		size, err = w.h.root.Stat(w.name)
		w.length = int(size)
	}
	if errors.Is(err, ErrNotFound) {
		return sendNotFound
	}
	if err != nil {
		return w.fail(err)
	}
	w.status = StatusOK
	return sendResponse
}

func sendNotImplemented(w *Worker) stateFunc {
	return w.sendPage(StatusNotImplemented, w.h.cfg.NotSupported, builtinNotSupported)
}

func sendNotFound(w *Worker) stateFunc {
	w.infof("File %s not found", w.req.Target)
	return w.sendPage(StatusNotFound, w.h.cfg.NotFound, builtinNotFound)
}

func (w *Worker) sendPage(st Status, name, builtin string) stateFunc {
	page, err := w.h.root.Resource(name, builtin)
	if err != nil {
		return w.fail(err)
	}
	w.status = st
	w.contentType = mimeHTML
	w.body = page
	w.length = len(page)
	w.sendBody = true
	return sendResponse
}

func sendResponse(w *Worker) stateFunc {
	w.ch.setWriteTimeout(w.h.cfg.WriteTimeout)
	res := newResponse(w.status, w.h.cfg.ServerName, w.contentType, w.length, w.h.now())
	if err := w.ch.writeHead(res); err != nil {
		return w.fail(err)
	}
	if w.sendBody {
		if err := w.ch.writeBody(w.body); err != nil {
			return w.fail(err)
		}
	}
	if w.status == StatusOK {
		w.infof("File %s of type %s returned", w.req.Target, w.contentType)
	}
	return finishWorker
}

func abandon(w *Worker) stateFunc {
	var malformed *MalformedRequestError
	switch {
	case errors.Is(w.err, ErrNoRequest):
		w.h.cfg.Logger.Printf("W %v", w.err)
	case errors.As(w.err, &malformed):
		w.h.cfg.Logger.Printf("W %v", w.err)
	default:
		w.h.cfg.Logger.Printf("E Server error: %v", w.err)
	}
	return finishWorker
}

func finishWorker(w *Worker) stateFunc {
	if w.finished {
		return nil
	}
	w.finished = true
	w.ch.Close()
	w.infof("Connection closed.")
	return nil
}
