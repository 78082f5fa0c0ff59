// Package chat implements the interactive session loop and the session
// picker. The loop is the one place in the CLI with real concurrency: a
// blocking keyboard read raced against cancellation, interleaved with
// draining server-pushed event streams.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"pinecli/internal/input"
	"pinecli/internal/render"
	"pinecli/internal/stream"
)

// SessionClient is the narrow surface of the remote session stream the
// loop needs. *stream.Conn satisfies it.
type SessionClient interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Join(ctx context.Context, sessionID string) error
	Leave(sessionID string) error
	Connected() bool
	Chat(ctx context.Context, sessionID, text string) (<-chan stream.Event, error)
}

// Loop runs the read-send-receive cycle for one session. The client must
// already be connected and joined to the session; the loop owns the
// connection from then on and releases it on every exit path.
type Loop struct {
	Client  SessionClient
	Console *render.Console
	Input   *input.LineReader
	Logger  *zap.Logger

	// LeaveGrace lets the leave frame flush before the stream closes.
	LeaveGrace time.Duration
}

// Run reads lines until an exit phrase, end of input, or cancellation.
// Each non-exit line is sent to the session and the resulting turn's
// events are rendered in arrival order, one at a time, before the next
// read. Leave and disconnect always run on exit, in that order.
func (l *Loop) Run(ctx context.Context, sessionID string) error {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	defer func() {
		// Leave is fire-and-forget; its error is deliberately dropped.
		_ = l.Client.Leave(sessionID)
		if l.LeaveGrace > 0 {
			time.Sleep(l.LeaveGrace)
		}
		_ = l.Client.Disconnect()
	}()

	for {
		l.Console.Prompt("You: ")

		line, err := l.Input.ReadLine(ctx)
		if err != nil {
			// Interrupt during the keyboard wait and end of input are
			// both a clean exit, not an error.
			l.Console.Println()
			return nil
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isExitPhrase(trimmed) {
			return nil
		}

		if !l.Client.Connected() {
			l.Console.Dimf("Reconnecting…")
			if err := l.reconnect(ctx, sessionID); err != nil {
				return fmt.Errorf("reconnect failed: %w", err)
			}
		}

		events, err := l.Client.Chat(ctx, sessionID, line)
		if err != nil {
			return err
		}
	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					break drain
				}
				l.Console.Event(ev)
			case <-ctx.Done():
				// Interrupt mid-turn: abandon the rest of the turn and
				// exit through the cleanup path.
				l.Console.Println()
				return nil
			}
		}
		logger.Debug("turn complete", zap.String("session_id", sessionID))
	}
}

// reconnect re-establishes the stream and rejoins the session. This is a
// retry-once policy: the caller aborts the turn on failure rather than
// retrying again.
func (l *Loop) reconnect(ctx context.Context, sessionID string) error {
	_ = l.Client.Disconnect()
	if err := l.Client.Connect(ctx); err != nil {
		return err
	}
	return l.Client.Join(ctx, sessionID)
}

// isExitPhrase reports whether a trimmed line ends the chat.
func isExitPhrase(trimmed string) bool {
	switch strings.ToLower(trimmed) {
	case "/quit", "/exit":
		return true
	}
	return false
}
