// Package control carries lifecycle tokens between a controller and the
// worker it supervises. The controller never flips a shared flag; it pushes
// a CLOSED token and the worker polls for it between units of work.
package control

import (
	"errors"
	"fmt"
	"strings"
)

// State is a lifecycle token value.
type State int

const (
	Running State = iota
	Closed
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Closed:
		return "CLOSED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, error) {
	switch s {
	case "RUNNING":
		return Running, nil
	case "CLOSED":
		return Closed, nil
	}
	return 0, fmt.Errorf("unknown control state %q", s)
}

// Token is a state tagged with the name of the worker it is addressed to.
type Token struct {
	Owner string
	State State
}

// String renders the token as "<owner>:<STATE>".
func (t Token) String() string {
	return t.Owner + ":" + t.State.String()
}

// ParseToken splits an "<owner>:<STATE>" string back into a Token.
func ParseToken(s string) (Token, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return Token{}, fmt.Errorf("malformed control token %q", s)
	}
	st, err := ParseState(s[i+1:])
	if err != nil {
		return Token{}, err
	}
	return Token{Owner: s[:i], State: st}, nil
}

// DefaultCapacity is the buffer size used when New is given less than 1.
const DefaultCapacity = 4

var (
	ErrChannelEmpty = errors.New("control channel empty")
	ErrChannelFull  = errors.New("control channel full")
)

// ProtocolError reports that the worker polled for a token and found none,
// meaning the two sides fell out of the RUNNING/CLOSED handshake.
type ProtocolError struct {
	Owner string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("control channel %s: expected a token, found none", e.Owner)
}

func (e *ProtocolError) Unwrap() error { return ErrChannelEmpty }

// Channel is a bounded single-producer/single-consumer token queue.
type Channel struct {
	owner  string
	tokens chan Token
}

// New creates a channel whose tokens are tagged with owner.
func New(owner string, capacity int) *Channel {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Channel{owner: owner, tokens: make(chan Token, capacity)}
}

// Owner returns the tag stamped on every token sent through c.
func (c *Channel) Owner() string { return c.owner }

// Send pushes a token without blocking.
func (c *Channel) Send(s State) error {
	select {
	case c.tokens <- Token{Owner: c.owner, State: s}:
		return nil
	default:
		return fmt.Errorf("send %s to %s: %w", s, c.owner, ErrChannelFull)
	}
}

// TryReceive pops the oldest token without blocking. An empty channel yields
// a *ProtocolError.
func (c *Channel) TryReceive() (Token, error) {
	select {
	case t := <-c.tokens:
		return t, nil
	default:
		return Token{}, &ProtocolError{Owner: c.owner}
	}
}

// Drain discards every buffered token and returns how many were dropped.
func (c *Channel) Drain() int {
	n := 0
	for {
		select {
		case <-c.tokens:
			n++
		default:
			return n
		}
	}
}

// Len returns the number of buffered tokens.
func (c *Channel) Len() int { return len(c.tokens) }
