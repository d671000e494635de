package core

import (
	"context"
	"fmt"
	"testing"
)

func benchmarkChannelBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(Options{ServerName: testServer}, nil)
	serve := func(nick string) *pipeConn {
		conn := newPipeConn(testAddr, 1024)
		go func() { _ = hub.Serve(ctx, conn) }()
		conn.in <- "NICK " + nick
		conn.in <- "USER " + nick + " 0 * :" + nick
		conn.in <- "JOIN #bench"
		<-conn.out // welcome
		return conn
	}

	sender := serve("sender")
	conns := make([]*pipeConn, 0, recipients)
	for i := range recipients {
		conns = append(conns, serve(fmt.Sprintf("c%d", i)))
	}

	// Drain all but the first recipient to avoid backpressure.
	target := conns[0]
	for _, c := range append(conns[1:], sender) {
		go func(pc *pipeConn) {
			for {
				select {
				case <-pc.out:
				case <-pc.closed:
					return
				}
			}
		}(c)
	}

	// Wait until everyone is in the channel, skipping join traffic on target.
	for {
		view, ok := hub.Channel("#bench")
		if ok && len(view.Members) == recipients+1 {
			break
		}
		<-target.out
	}
	for len(target.out) > 0 {
		<-target.out
	}

	const want = ":sender!sender@127.0.0.1 PRIVMSG #bench payload"

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sender.in <- "PRIVMSG #bench :payload"
		for line := <-target.out; line != want; line = <-target.out {
		}
	}
}

func BenchmarkChannelBroadcast_10(b *testing.B)  { benchmarkChannelBroadcast(b, 10) }
func BenchmarkChannelBroadcast_100(b *testing.B) { benchmarkChannelBroadcast(b, 100) }
func BenchmarkChannelBroadcast_500(b *testing.B) { benchmarkChannelBroadcast(b, 500) }
