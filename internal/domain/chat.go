package domain

// ChatMessage is a single conversation turn, shared by the handler and the
// inference integration.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
