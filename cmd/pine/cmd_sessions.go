package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pinecli/internal/api"
	"pinecli/internal/render"
	"pinecli/internal/stream"
)

// sessionsCmd manages assistant sessions
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage assistant sessions",
}

var (
	sessionsState      string
	sessionsLimit      int
	sessionsOffset     int
	sessionsJSONOutput bool
	sessionsForce      bool
)

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your sessions",
	RunE:  runSessionsList,
}

var sessionsGetCmd = &cobra.Command{
	Use:   "get <session-id>",
	Short: "Show a session's metadata and recent history",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsGet,
}

var sessionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new session",
	RunE:  runSessionsCreate,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	sessionsListCmd.Flags().StringVar(&sessionsState, "state", "", "Filter by state (active, completed, ...)")
	sessionsListCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "Maximum sessions to list")
	sessionsListCmd.Flags().IntVar(&sessionsOffset, "offset", 0, "Pagination offset")
	sessionsListCmd.Flags().BoolVar(&sessionsJSONOutput, "json", false, "Output as JSON")

	sessionsGetCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "History messages to show")
	sessionsGetCmd.Flags().BoolVar(&sessionsJSONOutput, "json", false, "Output as JSON")

	sessionsCreateCmd.Flags().BoolVar(&sessionsJSONOutput, "json", false, "Output as JSON")

	sessionsDeleteCmd.Flags().BoolVarP(&sessionsForce, "force", "f", false, "Delete even if a task is running")

	sessionsCmd.AddCommand(sessionsListCmd, sessionsGetCmd, sessionsCreateCmd, sessionsDeleteCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	return runGuarded(cmd, func(ctx context.Context) error {
		client, _, err := requireClient()
		if err != nil {
			return err
		}
		page, err := client.ListSessions(ctx, api.ListOptions{
			State:  sessionsState,
			Limit:  sessionsLimit,
			Offset: sessionsOffset,
		})
		if err != nil {
			return err
		}

		if sessionsJSONOutput {
			return printJSON(page)
		}

		console := render.Stdout()
		if len(page.Sessions) == 0 {
			console.Println("No sessions found.")
			return nil
		}

		table := render.NewTable(fmt.Sprintf("Sessions (%d total)", page.Total),
			"ID", "State", "Title", "Updated")
		for _, s := range page.Sessions {
			table.AddRow(s.ID, s.State, sessionTitle(s), s.UpdatedAt)
		}
		console.Println(table.View())

		shown := sessionsOffset + len(page.Sessions)
		if shown < page.Total {
			console.Dimf("Showing %d of %d — next page: pine sessions list --offset %d",
				shown, page.Total, shown)
		}
		return nil
	})
}

func runSessionsGet(cmd *cobra.Command, args []string) error {
	sessionID := args[0]
	return runGuarded(cmd, func(ctx context.Context) error {
		client, creds, err := requireClient()
		if err != nil {
			return err
		}
		session, err := client.GetSession(ctx, sessionID)
		if err != nil {
			return err
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
		defer func() { _ = conn.Disconnect() }()

		history, err := conn.GetHistory(ctx, sessionID, sessionsLimit, "asc")
		if err != nil {
			return fmt.Errorf("get history: %w", err)
		}

		if sessionsJSONOutput {
			return printJSON(map[string]any{
				"session": session,
				"history": history,
			})
		}

		console := render.Stdout()
		console.Boldf("Session %s", session.ID)
		console.Printf("  State:   %s\n", session.State)
		if session.Title != "" {
			console.Printf("  Title:   %s\n", session.Title)
		}
		console.Printf("  Created: %s\n", session.CreatedAt)
		console.Printf("  Updated: %s\n", session.UpdatedAt)
		console.Println()

		if len(history) == 0 {
			console.Dimf("No messages yet.")
			return nil
		}
		for _, msg := range history {
			console.HistoryMessage(msg)
		}
		return nil
	})
}

func runSessionsCreate(cmd *cobra.Command, args []string) error {
	return runGuarded(cmd, func(ctx context.Context) error {
		client, _, err := requireClient()
		if err != nil {
			return err
		}
		session, err := client.CreateSession(ctx)
		if err != nil {
			return err
		}
		if sessionsJSONOutput {
			return printJSON(session)
		}
		render.Stdout().Successf("Created session %s", session.ID)
		return nil
	})
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	sessionID := args[0]
	return runGuarded(cmd, func(ctx context.Context) error {
		client, _, err := requireClient()
		if err != nil {
			return err
		}
		if err := client.DeleteSession(ctx, sessionID, sessionsForce); err != nil {
			return err
		}
		render.Stdout().Successf("Deleted session %s", sessionID)
		return nil
	})
}

// sessionTitle is the list display title, shortened for the table.
func sessionTitle(s api.Session) string {
	title := s.Title
	if title == "" {
		title = "(untitled)"
	}
	if r := []rune(title); len(r) > 40 {
		title = string(r[:37]) + "..."
	}
	return title
}
