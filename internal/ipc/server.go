package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Handler processes one decoded control request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve answers control clients on listener until ctx is cancelled or
// the listener closes. Each connection carries exactly one
// newline-delimited JSON request and gets one JSON response; a
// malformed request still gets a Response so the CLI has something to
// print.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept control connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()
			respond(ctx, c, handler)
		}(conn)
	}
}

func respond(ctx context.Context, conn net.Conn, handler Handler) {
	enc := json.NewEncoder(conn)

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		_ = enc.Encode(Response{Error: fmt.Sprintf("read request: %v", err)})
		return
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		_ = enc.Encode(Response{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}

	_ = enc.Encode(handler.Handle(ctx, req))
}
