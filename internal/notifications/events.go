package notifications

import "encoding/json"

// Realtime event types.
const (
	EventUserFollowed    = "user_followed"
	EventPostLiked       = "post_liked"
	EventCommentAdded    = "comment_added"
	EventPostCreated     = "post_created"
	EventMessagesDropped = "messages_dropped"
)

// Event is the envelope written to websocket clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Encode marshals an event envelope.
func Encode(eventType string, payload any) (string, error) {
	b, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
