package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pinecli/internal/chat"
	"pinecli/internal/input"
	"pinecli/internal/render"
	"pinecli/internal/stream"
)

// replayLimit bounds how much history the chat command renders on entry.
const replayLimit = 20

var chatSessionID string

// chatCmd starts the interactive session loop
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with the Pine AI assistant",
	Long: `Open an interactive chat over the persistent session stream.

Without --session a session picker is shown first. Recent history is
replayed on entry. Type your message and press enter; the assistant's
events stream back in order. Type /quit or /exit (or press Ctrl-C) to
leave.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSessionID, "session", "s", "", "Session ID to join (skips the picker)")
}

func runChat(cmd *cobra.Command, args []string) error {
	return runGuarded(cmd, func(ctx context.Context) error {
		client, creds, err := requireClient()
		if err != nil {
			return err
		}
		console := render.Stdout()
		lines := input.NewLineReader(os.Stdin)
		defer lines.Close()

		sessionID := chatSessionID
		if len(args) > 0 {
			sessionID = args[0]
		}
		if sessionID == "" {
			sessionID, err = chat.PickSession(ctx, client, console, lines)
			if err != nil {
				return err
			}
			if sessionID == "" {
				return nil
			}
		}

		conn := stream.NewConn(stream.Config{
			BaseURL:     creds.ResolveBaseURL(""),
			AccessToken: creds.AccessToken,
			UserID:      creds.UserID,
			Logger:      logger,
		})
		if err := conn.Connect(ctx); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		if err := conn.Join(ctx, sessionID); err != nil {
			_ = conn.Disconnect()
			return fmt.Errorf("join session: %w", err)
		}

		replayHistory(ctx, conn, console, sessionID)

		console.Boldf("Connected to session %s", sessionID)
		console.Dimf("Type /quit to leave.")
		console.Println()

		loop := &chat.Loop{
			Client:     conn,
			Console:    console,
			Input:      lines,
			Logger:     logger,
			LeaveGrace: time.Second,
		}
		return loop.Run(ctx, sessionID)
	})
}

// replayHistory renders the session's recent messages. History is best
// effort: a failure is noted and the chat proceeds.
func replayHistory(ctx context.Context, conn *stream.Conn, console *render.Console, sessionID string) {
	msgs, err := conn.GetHistory(ctx, sessionID, replayLimit, "asc")
	if err != nil {
		console.Warnf("Could not load history: %v", err)
		return
	}
	if len(msgs) == 0 {
		return
	}

	console.Dimf("── recent history ──")
	for _, msg := range msgs {
		console.HistoryMessage(msg)
	}
	console.Dimf("── live ──")
}
