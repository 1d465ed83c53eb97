package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"go.viam.com/test"

	"github.com/soar/simrx/internal/hub"
	"github.com/soar/simrx/internal/loop"
)

const page = `<!DOCTYPE html>
<html>
  <head>
    <title>monitor</title>
    <style>
      body {
        color: #ffffff;
      }
    </style>
  </head>
  <body>
    <p id="status">   waiting   </p>
    <script>
      const answer = 40 + 2;
      console.log(answer);
    </script>
  </body>
</html>
`

func newTestServer(t *testing.T) (*httptest.Server, chan loop.FrameState) {
	t.Helper()
	h := hub.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)

	changes := make(chan loop.FrameState)
	b := hub.NewBroadcaster(h, changes)
	go b.Run()
	t.Cleanup(func() { close(changes) })

	frontend := fstest.MapFS{
		"index.html": {Data: []byte(page)},
		"app.txt":    {Data: []byte("plain")},
	}
	handler, err := New(h, b, frontend, ":0").Handler()
	test.That(t, err, test.ShouldBeNil)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, changes
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	test.That(t, err, test.ShouldBeNil)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	test.That(t, err, test.ShouldBeNil)
	return resp, string(body)
}

func TestMinifyPage(t *testing.T) {
	out, err := minifyPage([]byte(page))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(out), test.ShouldBeLessThan, len(page))
	test.That(t, string(out), test.ShouldContainSubstring, "console.log(answer)")
	test.That(t, string(out), test.ShouldNotContainSubstring, "\n    ")
}

func TestIndexAndStatic(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/")
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	test.That(t, resp.Header.Get("Content-Type"), test.ShouldContainSubstring, "text/html")
	test.That(t, body, test.ShouldContainSubstring, "monitor")
	test.That(t, len(body), test.ShouldBeLessThan, len(page))

	_, body = get(t, srv.URL+"/app.txt")
	test.That(t, body, test.ShouldEqual, "plain")
}

func TestFrameSnapshot(t *testing.T) {
	srv, changes := newTestServer(t)
	changes <- loop.FrameState{Connected: true, Device: "pad", Demands: loop.Demands{Throttle: 0.25}}

	var state loop.FrameState
	deadline := time.Now().Add(5 * time.Second)
	for state.Device != "pad" && time.Now().Before(deadline) {
		_, body := get(t, srv.URL+"/api/frame")
		test.That(t, json.Unmarshal([]byte(body), &state), test.ShouldBeNil)
		if state.Device != "pad" {
			time.Sleep(time.Millisecond)
		}
	}
	test.That(t, state.Connected, test.ShouldBeTrue)
	test.That(t, state.Demands.Throttle, test.ShouldEqual, 0.25)
}

func TestWebSocketStream(t *testing.T) {
	srv, changes := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	test.That(t, err, test.ShouldBeNil)
	defer conn.Close()
	test.That(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)), test.ShouldBeNil)

	var msg hub.WSMessage
	test.That(t, conn.ReadJSON(&msg), test.ShouldBeNil)
	test.That(t, msg.Type, test.ShouldEqual, "full")

	changes <- loop.FrameState{Connected: true, Device: "pad", Demands: loop.Demands{Rudder: -0.5}}
	test.That(t, conn.ReadJSON(&msg), test.ShouldBeNil)
	test.That(t, msg.Type, test.ShouldEqual, "delta")
	test.That(t, msg.Changes.Demands.Rudder, test.ShouldEqual, -0.5)

	test.That(t, conn.WriteJSON(hub.ClientMessage{Type: "sync"}), test.ShouldBeNil)
	msg = hub.WSMessage{}
	test.That(t, conn.ReadJSON(&msg), test.ShouldBeNil)
	test.That(t, msg.Type, test.ShouldEqual, "full")
	test.That(t, msg.Data.Device, test.ShouldEqual, "pad")
}
