package render

import (
	"encoding/json"

	"pinecli/internal/stream"
)

// Event renders one live session event. Unknown event types produce no
// output: the server grows new event types without breaking old clients.
func (c *Console) Event(ev stream.Event) {
	switch ev.Type {
	case stream.EventText:
		var payload stream.TextPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			return
		}
		if payload.Content != "" {
			c.Println(styleAssistant.Render("Pine AI:") + " " + payload.Content)
		}

	case stream.EventForm:
		var payload stream.FormPayload
		_ = json.Unmarshal(ev.Data, &payload)
		c.Println(styleWarning.Render("Form Required"))
		if payload.MessageToUser != "" {
			c.Println(styleWarning.Render(payload.MessageToUser))
		}
		// The user must be able to inspect the form, so the raw payload
		// is always surfaced for this one event type.
		c.Println(indentJSON(ev.Data))

	case stream.EventState:
		var payload stream.TextPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			return
		}
		if payload.Content != "" {
			c.Dimf("  ● state → %s", payload.Content)
		}

	case stream.EventThinking:
		c.Dimf("  ● thinking…")

	case stream.EventWorkLog:
		var payload stream.WorkLogPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			return
		}
		for _, step := range payload.Steps {
			c.Dimf("  ● %s [%s]", step.StepTitle, step.Status)
		}
	}
}

// indentJSON pretty-prints a raw payload, falling back to the raw bytes.
func indentJSON(data json.RawMessage) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(out)
}
