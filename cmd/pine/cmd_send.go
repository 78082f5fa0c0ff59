package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pinecli/internal/render"
	"pinecli/internal/stream"
)

var (
	sendSessionID  string
	sendNewSession bool
	sendNoWait     bool
	sendJSONOutput bool
)

// sendCmd sends one message without entering the interactive loop
var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send a single message to a session",
	Long: `Send one message and render the assistant's response, without the
interactive loop. Target an existing session with --session or create a
fresh one with --new. With --no-wait the message is fired and the command
returns immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendSessionID, "session", "s", "", "Session ID to send into")
	sendCmd.Flags().BoolVar(&sendNewSession, "new", false, "Create a new session for this message")
	sendCmd.Flags().BoolVar(&sendNoWait, "no-wait", false, "Do not wait for the assistant's response")
	sendCmd.Flags().BoolVar(&sendJSONOutput, "json", false, "Output response events as JSON lines")
}

func runSend(cmd *cobra.Command, args []string) error {
	if sendSessionID != "" && sendNewSession {
		return errors.New("--session and --new are mutually exclusive")
	}
	if sendSessionID == "" && !sendNewSession {
		return errors.New("either --session or --new is required")
	}

	message := args[0]

	return runGuarded(cmd, func(ctx context.Context) error {
		client, creds, err := requireClient()
		if err != nil {
			return err
		}
		console := render.Stdout()

		sessionID := sendSessionID
		if sendNewSession {
			session, err := client.CreateSession(ctx)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}
			sessionID = session.ID
			if !sendJSONOutput {
				console.Dimf("Created session %s", sessionID)
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
		defer func() {
			_ = conn.Leave(sessionID)
			_ = conn.Disconnect()
		}()
		if err := conn.Join(ctx, sessionID); err != nil {
			return fmt.Errorf("join session: %w", err)
		}

		if sendNoWait {
			if err := conn.Send(sessionID, message); err != nil {
				return err
			}
			if sendJSONOutput {
				return printJSON(map[string]string{"status": "sent", "session_id": sessionID})
			}
			console.Successf("Sent.")
			return nil
		}

		events, err := conn.Chat(ctx, sessionID, message)
		if err != nil {
			return err
		}
		for ev := range events {
			if sendJSONOutput {
				if err := printEventJSON(ev); err != nil {
					return err
				}
				continue
			}
			console.Event(ev)
		}
		return ctx.Err()
	})
}

// printEventJSON emits one event as a JSON line, raw payload included.
func printEventJSON(ev stream.Event) error {
	line, err := json.Marshal(map[string]any{
		"type": ev.Type,
		"data": json.RawMessage(ev.Data),
	})
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}
