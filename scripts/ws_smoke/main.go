package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/vovakirdan/wirechat-irc/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

// run registers over the WebSocket bridge, joins a channel, messages
// itself and quits, printing every line the server sends.
func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	nick := flag.String("nick", "tester", "nickname to register")
	channel := flag.String("channel", "#general", "channel to join")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()

	send := func(line string) error {
		if err := conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
			return fmt.Errorf("send %q: %w", line, err)
		}
		return nil
	}

	for _, line := range []string{
		"NICK " + *nick,
		"USER " + *nick + " 0 * :Smoke Test",
		"JOIN " + *channel,
		"PRIVMSG " + *nick + " :" + *text,
		"QUIT :smoke test done",
	} {
		if err := send(line); err != nil {
			return err
		}
	}

	gotEcho := false
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure && gotEcho {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		line := string(data)
		fmt.Println(line)

		msg, err := proto.Parse(line)
		if err != nil {
			continue
		}
		switch msg.Command {
		case proto.CmdPrivmsg:
			gotEcho = true
		case proto.CmdError:
			if !gotEcho {
				return fmt.Errorf("closed before message echo: %s", strings.TrimPrefix(line, "ERROR :"))
			}
		}
	}
}
