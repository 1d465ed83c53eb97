package server

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"regexp"

	"github.com/pkg/errors"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/soar/simrx/internal/hub"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	frontendFS  fs.FS
	addr        string
	httpServer  *http.Server
}

func New(h *hub.Hub, b *hub.Broadcaster, frontendFS fs.FS, addr string) *Server {
	return &Server{
		hub:         h,
		broadcaster: b,
		frontendFS:  frontendFS,
		addr:        addr,
	}
}

// minifyPage compacts an HTML page with its inline styles and scripts.
func minifyPage(page []byte) ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return m.Bytes("text/html", page)
}

// Handler builds the routes: the monitor page, its websocket and a JSON
// snapshot of the last frame.
func (s *Server) Handler() (http.Handler, error) {
	raw, err := fs.ReadFile(s.frontendFS, "index.html")
	if err != nil {
		return nil, errors.Wrap(err, "reading index.html")
	}
	page, err := minifyPage(raw)
	if err != nil {
		return nil, errors.Wrap(err, "minifying index.html")
	}
	log.Printf("Monitor page minified from %d to %d bytes", len(raw), len(page))

	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster))
	mux.HandleFunc("/api/frame", handleFrame(s.broadcaster))

	// Static files (frontend)
	fileServer := http.FileServer(http.FS(s.frontendFS))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "/index.html" {
			handleIndex(page)(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
	return mux, nil
}

func (s *Server) ListenAndServe() error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: handler,
	}

	log.Printf("HTTP server listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		log.Println("Shutting down HTTP server...")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
