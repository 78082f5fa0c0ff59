package chat

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"pinecli/internal/api"
	"pinecli/internal/input"
	"pinecli/internal/render"
)

// pickerPageSize is the fixed page size for the session picker.
const pickerPageSize = 10

// Lister is the session CRUD surface the picker needs. *api.Client
// satisfies it.
type Lister interface {
	ListSessions(ctx context.Context, opts api.ListOptions) (*api.SessionPage, error)
	CreateSession(ctx context.Context) (*api.Session, error)
}

// PickSession shows recent sessions page by page and resolves the user's
// choice to a session id. Already-fetched pages are never re-fetched: the
// accumulated list only grows. An empty first page skips the prompt and
// creates a session directly. Invalid input aborts with an empty id and
// no error; cancellation aborts with the context's error.
func PickSession(ctx context.Context, client Lister, console *render.Console, lines *input.LineReader) (string, error) {
	var items []api.Session
	offset := 0

	for {
		page, err := client.ListSessions(ctx, api.ListOptions{Limit: pickerPageSize, Offset: offset})
		if err != nil {
			return "", err
		}
		items = append(items, page.Sessions...)
		total := page.Total
		hasMore := len(items) < total

		var choice string
		if len(items) == 0 {
			console.Dimf("No existing sessions found.")
			choice = "n"
		} else {
			console.Boldf("Recent sessions:")
			for i, s := range items {
				title := s.Title
				if title == "" {
					title = "untitled"
				}
				console.Printf("  %d. %s  (%s)  %s\n", i+1, title, s.State, s.ID)
			}
			console.Printf("  n. Create a new session\n")
			if hasMore {
				console.Printf("  m. Show more  (%d of %d)\n", len(items), total)
			}
			if hasMore {
				console.Prompt("Select a session (number, 'n', or 'm') [1]: ")
			} else {
				console.Prompt("Select a session (number or 'n') [1]: ")
			}

			line, err := lines.ReadLine(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					// End of input with nothing typed: abort quietly.
					console.Println()
					return "", nil
				}
				return "", err
			}
			choice = strings.TrimSpace(line)
			if choice == "" {
				choice = "1"
			}
		}

		switch cmd := strings.ToLower(choice); {
		case cmd == "n":
			s, err := client.CreateSession(ctx)
			if err != nil {
				return "", err
			}
			console.Successf("Session created:  %s", s.ID)
			return s.ID, nil

		case cmd == "m" && hasMore:
			offset = len(items)
			continue

		default:
			idx, err := strconv.Atoi(choice)
			if err == nil && idx >= 1 && idx <= len(items) {
				return items[idx-1].ID, nil
			}
			console.Errorf("Invalid selection.")
			return "", nil
		}
	}
}
