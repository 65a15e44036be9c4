package dispatch

// Inbound actions a client may send over an established connection.
const (
	ActionSendMessage = "SEND_MESSAGE"
	ActionChatState   = "UPDATE_CHAT_STATE"
	ActionMarkRead    = "MARK_MESSAGES_AS_READ"
)

// Outbound actions pushed back through the registry.
const (
	ActionReceiveMessage    = "RECEIVE_MESSAGE"
	ActionStatusUpdated     = "MESSAGE_STATUS_UPDATED"
	ActionMessagesRead      = "MESSAGES_READ"
	ActionSendMessageFailed = "SEND_MESSAGE_FAILED"
	ActionProtocolError     = "ERROR"
)

type inboundFrame struct {
	Action     string `json:"action"`
	Receiver   int    `json:"receiver,omitempty"`
	Content    string `json:"content,omitempty"`
	IsActive   bool   `json:"isActive,omitempty"`
	InChatWith int    `json:"inChatWith,omitempty"`
	ContactID  int    `json:"contactId,omitempty"`
}

type outboundFrame struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type statusUpdate struct {
	MessageID  int    `json:"message_id"`
	SenderID   int    `json:"sender_id"`
	ReceiverID int    `json:"receiver_id"`
	Status     string `json:"status"`
}

type readReceipt struct {
	ReaderID  int   `json:"reader_id"`
	ContactID int   `json:"contact_id"`
	Updated   int64 `json:"updated"`
}
