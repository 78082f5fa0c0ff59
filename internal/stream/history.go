package stream

import "encoding/json"

// History message types persisted by the service. The vocabulary overlaps
// the live event tags; the location, three-way-call, and auth-confirmation
// variants only ever appear in history.
const (
	HistoryTypeMessage  = "session:message"
	HistoryTypeText     = "session:text"
	HistoryTypeWorkLog  = "session:work_log"
	HistoryTypeForm     = "session:form_to_user"
	HistoryTypeLocation = "session:ask_for_location"
	HistoryTypeThreeWay = "session:three_way_call"
	HistoryTypeAuth     = "session:interactive_auth_confirmation"
)

// HistoryMessage is one persisted record from a session's past turns.
type HistoryMessage struct {
	Type     string          `json:"type"`
	Metadata HistoryMetadata `json:"metadata"`
	Payload  HistoryPayload  `json:"payload"`
}

// HistoryMetadata carries the message source and timestamp.
type HistoryMetadata struct {
	Source    HistorySource `json:"source"`
	Timestamp string        `json:"timestamp"`
}

// HistorySource identifies who produced a history message.
type HistorySource struct {
	Role string `json:"role"`
}

// HistoryPayload wraps the raw message data.
type HistoryPayload struct {
	Data json.RawMessage `json:"data"`
}
