package http

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

type wsClient struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
}

func dialWS(t *testing.T, ts *testServer) *wsClient {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.CloseNow() })
	return &wsClient{t: t, ctx: ctx, conn: conn}
}

func (c *wsClient) send(frame string) {
	c.t.Helper()
	if err := c.conn.Write(c.ctx, websocket.MessageText, []byte(frame)); err != nil {
		c.t.Fatalf("write %q: %v", frame, err)
	}
}

func (c *wsClient) expect(want string) {
	c.t.Helper()
	_, data, err := c.conn.Read(c.ctx)
	if err != nil {
		c.t.Fatalf("read (want %q): %v", want, err)
	}
	if got := string(data); got != want {
		c.t.Fatalf("got %q, want %q", got, want)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t, nil, nil)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketRegisterJoinAndMessage(t *testing.T) {
	ts := startTestServer(t, nil, nil)

	alice := dialWS(t, ts)
	// One frame may carry several lines.
	alice.send("NICK alice\r\nUSER alice 0 * :Alice\r\n")
	alice.expect(":irc.test 001 alice :Welcome to the Internet Relay Network alice!alice@127.0.0.1")
	alice.send("JOIN #ws")
	alice.expect(":alice!alice@127.0.0.1 JOIN #ws")
	alice.expect(":irc.test 353 alice = #ws alice")
	alice.expect(":irc.test 366 alice #ws :End of NAMES list")

	bob := dialWS(t, ts)
	bob.send("NICK bob")
	bob.send("USER bob 0 * :Bob")
	bob.expect(":irc.test 001 bob :Welcome to the Internet Relay Network bob!bob@127.0.0.1")
	bob.send("JOIN #ws")
	bob.expect(":bob!bob@127.0.0.1 JOIN #ws")
	bob.expect(":irc.test 353 bob = #ws alice bob")
	bob.expect(":irc.test 366 bob #ws :End of NAMES list")
	alice.expect(":bob!bob@127.0.0.1 JOIN #ws")

	bob.send("PRIVMSG #ws :hello over websocket")
	alice.expect(":bob!bob@127.0.0.1 PRIVMSG #ws :hello over websocket")

	bob.send("QUIT :gone for now")
	bob.expect("ERROR :Closing Link: 127.0.0.1 (gone for now)")
	alice.expect(":bob!bob@127.0.0.1 QUIT :gone for now")

	_, _, err := bob.conn.Read(bob.ctx)
	if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		t.Fatalf("expected normal closure, got %v", err)
	}
}

func TestWebSocketCloseRemovesClient(t *testing.T) {
	ts := startTestServer(t, nil, nil)

	c := dialWS(t, ts)
	c.send("NICK gone\nUSER gone 0 * :Gone")
	c.expect(":irc.test 001 gone :Welcome to the Internet Relay Network gone!gone@127.0.0.1")

	if err := c.conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		t.Fatalf("close: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for ts.hub.Stats().Clients != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not removed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSplitFrame(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  []string
	}{
		{name: "single", frame: "NICK a", want: []string{"NICK a"}},
		{name: "terminated", frame: "NICK a\r\n", want: []string{"NICK a"}},
		{name: "batch", frame: "NICK a\r\nUSER a 0 * :A\nJOIN #x", want: []string{"NICK a", "USER a 0 * :A", "JOIN #x"}},
		{name: "empty", frame: "", want: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitFrame(tt.frame, 512)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := splitFrame("ok\n"+strings.Repeat("x", 600), 512); !errors.Is(err, errLineTooLong) {
		t.Fatalf("expected errLineTooLong, got %v", err)
	}
}
