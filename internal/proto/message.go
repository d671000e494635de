package proto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// Command words understood by the server.
const (
	CmdNick    = "NICK"
	CmdUser    = "USER"
	CmdJoin    = "JOIN"
	CmdPart    = "PART"
	CmdPrivmsg = "PRIVMSG"
	CmdWho     = "WHO"
	CmdQuit    = "QUIT"
	CmdCap     = "CAP"
	CmdMode    = "MODE"
	CmdError   = "ERROR"
)

var (
	// ErrEmptyLine is returned for lines that carry no command word.
	ErrEmptyLine = errors.New("empty line")
	// ErrBadChar is returned for lines carrying NUL or a stray CR/LF.
	ErrBadChar = errors.New("line contains NUL, CR or LF")
)

// Message is one inbound line split into its command word and raw argument text.
type Message struct {
	Raw     string
	Command string
	// Args is everything after the command word, with the original spacing and colons intact.
	Args string
}

// Parse validates an inbound line and extracts the command word.
// The command is upper-cased; Args keeps the raw text so validators can
// inspect positional fields and leading colons.
func Parse(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	msg := Message{Raw: line}

	parsed, err := ircmsg.ParseLine(line)
	if err != nil {
		if errors.Is(err, ircmsg.ErrorLineIsEmpty) || errors.Is(err, ircmsg.ErrorCommandMissing) {
			return msg, ErrEmptyLine
		}
		if errors.Is(err, ircmsg.ErrorLineContainsBadChar) {
			return msg, ErrBadChar
		}
		return msg, fmt.Errorf("parse line: %w", err)
	}
	if parsed.Command == "" {
		return msg, ErrEmptyLine
	}

	msg.Command = strings.ToUpper(parsed.Command)
	msg.Args = rawArgs(line)
	return msg, nil
}

// Fields splits Args on runs of spaces.
func (m Message) Fields() []string {
	return strings.Fields(m.Args)
}

// SplitArgs splits Args on single spaces into at most n fields, the last one
// holding the remainder verbatim.
func (m Message) SplitArgs(n int) []string {
	if m.Args == "" {
		return nil
	}
	return strings.SplitN(m.Args, " ", n)
}

// Trailing strips one leading colon from a trailing argument.
func Trailing(s string) string {
	return strings.TrimPrefix(s, ":")
}

func rawArgs(line string) string {
	rest := strings.TrimLeft(line, " ")
	if strings.HasPrefix(rest, "@") {
		rest = afterToken(rest)
	}
	if strings.HasPrefix(rest, ":") {
		rest = afterToken(rest)
	}
	return afterToken(rest)
}

func afterToken(s string) string {
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return ""
	}
	return strings.TrimLeft(s[i+1:], " ")
}
