package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pinecli/internal/input"
	"pinecli/internal/render"
	"pinecli/internal/stream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClient scripts the remote session stream and records every call so
// tests can assert on ordering and cleanup.
type fakeClient struct {
	mu sync.Mutex

	connected  bool
	connectErr error
	chatErr    error
	turns      [][]stream.Event

	connects    int
	disconnects int
	joins       []string
	leaves      []string
	sent        []string
	calls       []string
}

func (f *fakeClient) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeClient) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	f.record("connect")
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeClient) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	f.record("disconnect")
	f.connected = false
	return nil
}

func (f *fakeClient) Join(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, sessionID)
	f.record("join")
	return nil
}

func (f *fakeClient) Leave(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaves = append(f.leaves, sessionID)
	f.record("leave")
	return nil
}

func (f *fakeClient) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeClient) Chat(ctx context.Context, sessionID, text string) (<-chan stream.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("chat")
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	f.sent = append(f.sent, text)

	var turn []stream.Event
	if len(f.turns) > 0 {
		turn = f.turns[0]
		f.turns = f.turns[1:]
	}
	ch := make(chan stream.Event, len(turn))
	for _, ev := range turn {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func textEvent(t *testing.T, content string) stream.Event {
	t.Helper()
	data, err := json.Marshal(stream.TextPayload{Content: content})
	require.NoError(t, err)
	return stream.Event{Type: stream.EventText, Data: data}
}

func newLoop(t *testing.T, client *fakeClient, in io.Reader) (*Loop, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	lines := input.NewLineReader(in)
	t.Cleanup(lines.Close)
	return &Loop{
		Client:  client,
		Console: render.NewConsole(&buf),
		Input:   lines,
	}, &buf
}

func TestRun_ExitPhrases(t *testing.T) {
	for _, phrase := range []string{"/quit", "/exit", "/QUIT", "  /Exit  ", "/qUiT"} {
		t.Run(phrase, func(t *testing.T) {
			client := &fakeClient{connected: true}
			loop, _ := newLoop(t, client, strings.NewReader(phrase+"\n"))

			require.NoError(t, loop.Run(context.Background(), "s-1"))

			assert.Empty(t, client.sent, "exit phrase must never be sent")
			assert.Equal(t, []string{"s-1"}, client.leaves)
			assert.Equal(t, 1, client.disconnects)
		})
	}
}

func TestRun_EndOfInput(t *testing.T) {
	client := &fakeClient{connected: true}
	loop, _ := newLoop(t, client, strings.NewReader(""))

	require.NoError(t, loop.Run(context.Background(), "s-1"))

	assert.Empty(t, client.sent)
	assert.Equal(t, []string{"s-1"}, client.leaves)
	assert.Equal(t, 1, client.disconnects)
}

func TestRun_EmptyLineTerminates(t *testing.T) {
	client := &fakeClient{connected: true}
	loop, _ := newLoop(t, client, strings.NewReader("   \nnever sent\n"))

	require.NoError(t, loop.Run(context.Background(), "s-1"))
	assert.Empty(t, client.sent)
}

func TestRun_PendingInputReleasedOnQuit(t *testing.T) {
	// Input is still buffered when the quit lands; the reader must not
	// strand its pump goroutine (TestMain's leak check enforces this).
	client := &fakeClient{connected: true}
	loop, _ := newLoop(t, client, strings.NewReader("/quit\nleftover\n"))

	require.NoError(t, loop.Run(context.Background(), "s-1"))
	assert.Empty(t, client.sent)
}

func TestRun_SendAndRenderTurn(t *testing.T) {
	client := &fakeClient{
		connected: true,
		turns: [][]stream.Event{
			{
				{Type: stream.EventThinking},
				textEvent(t, "Hi there"),
			},
		},
	}
	loop, buf := newLoop(t, client, strings.NewReader("Hello\n/quit\n"))

	require.NoError(t, loop.Run(context.Background(), "s-1"))

	assert.Equal(t, []string{"Hello"}, client.sent)
	out := buf.String()
	heartbeat := strings.Index(out, "thinking")
	reply := strings.Index(out, "Pine AI: Hi there")
	require.GreaterOrEqual(t, heartbeat, 0)
	require.GreaterOrEqual(t, reply, 0)
	assert.Less(t, heartbeat, reply, "events must render in arrival order")

	// Cleanup ran after the quit.
	assert.Equal(t, []string{"s-1"}, client.leaves)
	assert.Equal(t, 1, client.disconnects)
}

func TestRun_ReconnectOnceBeforeSend(t *testing.T) {
	client := &fakeClient{connected: false}
	loop, _ := newLoop(t, client, strings.NewReader("hi\n/quit\n"))

	require.NoError(t, loop.Run(context.Background(), "s-1"))

	assert.Equal(t, 1, client.connects, "exactly one reconnect attempt")
	assert.Equal(t, []string{"s-1"}, client.joins, "rejoined before send")
	assert.Equal(t, []string{"hi"}, client.sent)

	// Call order: the reconnect (disconnect, connect, join) happens
	// before the chat send, and cleanup still runs at the end.
	assert.Equal(t,
		[]string{"disconnect", "connect", "join", "chat", "leave", "disconnect"},
		client.calls)
}

func TestRun_ReconnectFailureIsFatal(t *testing.T) {
	client := &fakeClient{connected: false, connectErr: errors.New("dial refused")}
	loop, _ := newLoop(t, client, strings.NewReader("hi\n"))

	err := loop.Run(context.Background(), "s-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconnect failed")
	assert.Empty(t, client.sent)

	// Cleanup runs on the error path too.
	assert.Equal(t, []string{"s-1"}, client.leaves)
}

func TestRun_ChatErrorPropagatesAndCleansUp(t *testing.T) {
	client := &fakeClient{connected: true, chatErr: errors.New("stream torn")}
	loop, _ := newLoop(t, client, strings.NewReader("hi\n"))

	err := loop.Run(context.Background(), "s-1")
	require.Error(t, err)
	assert.Equal(t, []string{"s-1"}, client.leaves)
	assert.Equal(t, 1, client.disconnects)
}

func TestRun_CancelDuringKeyboardWait(t *testing.T) {
	client := &fakeClient{connected: true}

	// A reader that never yields a line, like an idle keyboard.
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	loop, _ := newLoop(t, client, pr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx, "s-1") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err, "interrupt during read is a clean exit")
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit on cancellation")
	}

	assert.Equal(t, []string{"s-1"}, client.leaves)
	assert.Equal(t, 1, client.disconnects)
}

func TestRun_NoSecondSendWhileDraining(t *testing.T) {
	// Both lines are available immediately; the scripted turns are fully
	// drained one at a time, so the sends arrive strictly in order.
	client := &fakeClient{
		connected: true,
		turns: [][]stream.Event{
			{textEvent(t, "first reply")},
			{textEvent(t, "second reply")},
		},
	}
	loop, buf := newLoop(t, client, strings.NewReader("one\ntwo\n/quit\n"))

	require.NoError(t, loop.Run(context.Background(), "s-1"))

	assert.Equal(t, []string{"one", "two"}, client.sent)
	out := buf.String()
	assert.Less(t, strings.Index(out, "first reply"), strings.Index(out, "second reply"))
}
