// Package callback receives the authorization redirect on a loopback address.
// It only captures the query; the flow decides whether it is valid.
package callback

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

var (
	//go:embed success.html
	successHTML string

	//go:embed denied.html
	deniedHTML string
)

const (
	// DefaultTimeout bounds how long Wait blocks for the browser.
	DefaultTimeout = 5 * time.Minute
)

// ErrTimeout is returned by Wait when no callback arrived in time.
var ErrTimeout = errors.New("timed out waiting for the authorization callback")

// Server is a one-shot loopback HTTP listener for the redirect.
type Server struct {
	listener net.Listener
	server   *http.Server
	redirect *url.URL
	queries  chan url.Values
	errs     chan error
	received atomic.Bool
}

// Listen starts a listener on the host and port of redirectURL, which must be a
// loopback http URL. Port 0 picks a free port; use RedirectURL for the result.
func Listen(redirectURL string) (*Server, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect url: %w", err)
	}
	if u.Scheme != "http" {
		return nil, fmt.Errorf("redirect url %q is not an http url", redirectURL)
	}
	if !isLoopback(u.Hostname()) {
		return nil, fmt.Errorf("redirect url %q is not a loopback address", redirectURL)
	}

	port := u.Port()
	if port == "" {
		port = "80"
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(u.Hostname(), port))
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server on %s: %w", u.Host, err)
	}

	// keep the registered host name, only the port may change
	redirect := *u
	redirect.RawQuery = ""
	redirect.Host = net.JoinHostPort(u.Hostname(), fmt.Sprint(listener.Addr().(*net.TCPAddr).Port))

	s := &Server{
		listener: listener,
		redirect: &redirect,
		queries:  make(chan url.Values, 1),
		errs:     make(chan error, 1),
	}

	mux := http.NewServeMux()
	// the path is sent as registered; "/" must not catch every other path
	pattern := u.Path
	if pattern == "" || pattern == "/" {
		pattern = "/{$}"
	}
	mux.HandleFunc(pattern, s.handle)
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- fmt.Errorf("callback server stopped: %w", err)
		}
	}()

	pterm.Debug.Printfln("callback server listening on %s for %s", listener.Addr(), s.RedirectURL())
	return s, nil
}

// RedirectURL is the URL the authorization server must redirect to, with the port actually bound.
func (s *Server) RedirectURL() string {
	return s.redirect.String()
}

// Wait blocks until the first callback arrives and returns its query parameters unchanged.
// A timeout of 0 uses DefaultTimeout.
func (s *Server) Wait(ctx context.Context, timeout time.Duration) (url.Values, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	select {
	case q := <-s.queries:
		return q, nil
	case err := <-s.errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}

// Close stops the listener. It waits briefly for the response page to be written.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		// keep what could be parsed, the flow reports the missing parts
		pterm.Debug.Printfln("callback query: %v", err)
	}

	// only the first callback counts
	if !s.received.CompareAndSwap(false, true) {
		http.Error(w, "authorization already received", http.StatusConflict)
		return
	}
	s.queries <- q

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if q.Has("error") {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, deniedHTML)
		return
	}
	_, _ = fmt.Fprint(w, successHTML)
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
