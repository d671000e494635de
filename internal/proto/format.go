package proto

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// Prefix builds the user source `<nick>!<nick>@<address>`.
func Prefix(nick, address string) string {
	return nick + "!" + nick + "@" + address
}

// Format renders one outbound line without the CRLF terminator.
// Middle parameters that would break framing are replaced, and the final
// parameter is written in trailing form when it needs to be.
func Format(source, command string, params ...string) string {
	safe := make([]string, len(params))
	for i, p := range params {
		if i == len(params)-1 {
			safe[i] = stripControl(p)
			continue
		}
		safe[i] = middleParam(p)
	}

	msg := ircmsg.MakeMessage(nil, source, command, safe...)
	line, err := msg.Line()
	if err != nil {
		return fallbackLine(source, command, safe)
	}
	return strings.TrimRight(line, "\r\n")
}

func middleParam(p string) string {
	p = strings.TrimLeft(stripControl(p), ":")
	p = strings.ReplaceAll(p, " ", "_")
	if p == "" {
		return "*"
	}
	return p
}

func stripControl(s string) string {
	if !strings.ContainsAny(s, "\r\n\x00") {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', 0:
			return -1
		}
		return r
	}, s)
}

func fallbackLine(source, command string, params []string) string {
	var b strings.Builder
	if source != "" {
		b.WriteByte(':')
		b.WriteString(source)
		b.WriteByte(' ')
	}
	b.WriteString(command)
	for i, p := range params {
		b.WriteByte(' ')
		if i == len(params)-1 {
			b.WriteByte(':')
		}
		b.WriteString(p)
	}
	return b.String()
}
