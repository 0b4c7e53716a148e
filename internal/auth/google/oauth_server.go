package google

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// CallbackServer is a one-shot loopback listener for the provider redirect.
// It accepts a single connection, answers a single request and shuts down.
type CallbackServer struct {
	listener  net.Listener
	port      int
	closeOnce sync.Once
	done      chan struct{}
}

// ListenCallback binds 127.0.0.1:port. The bind happens before any URL is
// opened so the redirect cannot race the listener. A bind failure is not
// retried: the redirect URI registered with the provider is pinned to port.
//
// Parameters:
//   - port: The local port to bind; 0 picks an ephemeral port
//
// Returns:
//   - *CallbackServer: The bound, not yet serving, callback server
//   - error: An ErrPortInUse authentication error if the bind failed
func ListenCallback(port int) (*CallbackServer, error) {
	addr := net.JoinHostPort(callbackHost, strconv.Itoa(port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, NewAuthenticationError(ErrPortInUse, fmt.Errorf("failed to bind %s: %w", addr, err))
	}

	return &CallbackServer{
		listener: listener,
		port:     listener.Addr().(*net.TCPAddr).Port,
		done:     make(chan struct{}),
	}, nil
}

// Port returns the bound port.
func (s *CallbackServer) Port() int {
	return s.port
}

// RedirectURI returns the redirect URI that reaches this server.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// Close releases the port. A blocked accept returns immediately.
func (s *CallbackServer) Close() {
	s.closeOnce.Do(func() {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Debugf("Failed to close OAuth callback listener: %v", err)
		}
	})
}

// serve handles exactly one inbound request and stores its code in cell.
// It returns after the response is written, or when accept or read fails.
func (s *CallbackServer) serve(cell *codeCell) {
	defer close(s.done)
	defer s.Close()

	conn, err := s.listener.Accept()
	if err != nil {
		if !errors.Is(err, net.ErrClosed) {
			log.Warnf("OAuth callback accept failed: %v", err)
		}
		return
	}
	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Debugf("Failed to close OAuth callback connection: %v", errClose)
		}
	}()

	if err = conn.SetDeadline(time.Now().Add(callbackReadTimeout)); err != nil {
		log.Debugf("Failed to set OAuth callback deadline: %v", err)
	}

	req, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		log.Warnf("Failed to read OAuth callback request: %v", err)
		return
	}
	log.Debug("Received OAuth callback")

	if code, ok := extractCode(req.RequestURI); ok {
		if cell.Store(code) {
			log.Debug("Authorization code captured")
		}
	} else {
		log.Warn("OAuth callback carried no authorization code")
	}
	if req.URL != nil {
		if providerErr := req.URL.Query().Get("error"); providerErr != "" {
			log.Warnf("OAuth provider returned error: %s", providerErr)
		}
	}

	if err = writeCallbackResponse(conn); err != nil {
		log.Debugf("Failed to write OAuth callback response: %v", err)
	}
}

// writeCallbackResponse sends the fixed 200 success page and closes the exchange.
func writeCallbackResponse(w io.Writer) error {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header: http.Header{
			"Content-Type":  {"text/plain; charset=utf-8"},
			"Cache-Control": {"no-store"},
		},
		ContentLength: int64(len(SuccessMessage)),
		Body:          io.NopCloser(strings.NewReader(SuccessMessage)),
		Close:         true,
	}
	return resp.Write(w)
}

// extractCode scans the query of a request target for a parameter literally
// named "code". The first match wins and later parameters are ignored. Only
// %XX escapes are decoded; a literal "+" is kept. A value that fails to
// percent-decode yields "" but still counts as found.
//
// Parameters:
//   - target: The raw request target, e.g. "/?code=abc&state=xyz"
//
// Returns:
//   - string: The decoded code
//   - bool: Whether a code parameter was present
func extractCode(target string) (string, bool) {
	_, query, found := strings.Cut(target, "?")
	if !found {
		return "", false
	}
	for _, param := range strings.Split(query, "&") {
		key, value, ok := strings.Cut(param, "=")
		if !ok || key != "code" {
			continue
		}
		decoded, err := url.PathUnescape(value)
		if err != nil {
			decoded = ""
		}
		return decoded, true
	}
	return "", false
}
