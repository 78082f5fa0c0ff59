package render

import (
	"encoding/json"

	"pinecli/internal/stream"
)

// HistoryMessage renders one persisted record in the compact form used
// when replaying history before a chat. The rules mirror live event
// rendering with two history-only twists: "message" records are shown
// only for the user role, and work-log records show step details rather
// than title/status. Unrecognized type/role combinations are skipped.
func (c *Console) HistoryMessage(msg stream.HistoryMessage) {
	role := msg.Metadata.Source.Role
	ts := formatTimestamp(msg.Metadata.Timestamp)

	switch msg.Type {
	case stream.HistoryTypeMessage:
		if role != "user" {
			return
		}
		if content := historyContent(msg); content != "" {
			c.labeled(styleUser.Render("You:"), content, ts)
		}

	case stream.HistoryTypeText:
		if content := historyContent(msg); content != "" {
			c.labeled(styleAssistant.Render("Pine AI:"), content, ts)
		}

	case stream.HistoryTypeWorkLog:
		var payload stream.WorkLogPayload
		if err := json.Unmarshal(msg.Payload.Data, &payload); err != nil {
			return
		}
		for _, step := range payload.Steps {
			if step.StepDetails != "" {
				c.labeled(styleAssistant.Render("Pine AI:"), step.StepDetails, ts)
			}
		}

	case stream.HistoryTypeForm, stream.HistoryTypeLocation,
		stream.HistoryTypeThreeWay, stream.HistoryTypeAuth:
		c.labeled(styleWarning.Render("Pine AI ("+msg.Type+"):"), "", ts)
		c.Println(indentJSON(msg.Payload.Data))
	}
}

// labeled prints "label (ts) content" with the timestamp dimmed.
func (c *Console) labeled(label, content, ts string) {
	line := "  " + label
	if ts != "" {
		line += " " + styleDim.Render("("+ts+")")
	}
	if content != "" {
		line += " " + content
	}
	c.Println(line)
}

func historyContent(msg stream.HistoryMessage) string {
	var payload stream.TextPayload
	if err := json.Unmarshal(msg.Payload.Data, &payload); err != nil {
		return ""
	}
	return payload.Content
}
