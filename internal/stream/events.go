// Package stream implements the persistent session connection to the Pine
// AI service: a websocket carrying tagged JSON envelopes in both
// directions. One Conn owns the socket for its lifetime; the chat loop is
// its only consumer.
package stream

import "encoding/json"

// EventType tags a server-pushed event. Unknown tags are passed through
// to the renderer, which ignores them; new server event types must never
// crash the client.
type EventType string

const (
	EventText     EventType = "session_text"
	EventState    EventType = "session_state"
	EventThinking EventType = "session_thinking"
	EventWorkLog  EventType = "session_work_log"
	EventForm     EventType = "session_form_to_user"

	// EventDone is the explicit turn-complete signal. It terminates the
	// event sequence for one sent message and is never delivered to
	// consumers. Stream closure is the only other legitimate terminator.
	EventDone EventType = "session_done"
)

// Event is one tagged envelope from the session stream. Data stays raw:
// each consumer decodes only the payloads it understands.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TextPayload is the payload of EventText and EventState.
type TextPayload struct {
	Content string `json:"content"`
}

// WorkLogStep is one entry of a work-log payload, in list order.
type WorkLogStep struct {
	StepTitle   string `json:"step_title"`
	Status      string `json:"status"`
	StepDetails string `json:"step_details"`
}

// WorkLogPayload is the payload of EventWorkLog.
type WorkLogPayload struct {
	Steps []WorkLogStep `json:"steps"`
}

// FormPayload is the payload of EventForm. The full raw payload is kept
// alongside the extracted message because the user must be able to
// inspect the form to answer it.
type FormPayload struct {
	MessageToUser string `json:"message_to_user"`
}
