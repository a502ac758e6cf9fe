package zulip

// Stream is one entry of GET /streams.
type Stream struct {
	StreamID    int64  `json:"stream_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InviteOnly  bool   `json:"invite_only"`
}

// Topic is one entry of GET /users/me/{stream_id}/topics.
type Topic struct {
	Name  string `json:"name"`
	MaxID int64  `json:"max_id"`
}

// Message is a stream message as returned by GET /messages with apply_markdown
// set, so Content is rendered HTML.
type Message struct {
	ID             int64  `json:"id"`
	SenderID       int64  `json:"sender_id"`
	SenderFullName string `json:"sender_full_name"`
	SenderEmail    string `json:"sender_email,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Timestamp      int64  `json:"timestamp"`
	Content        string `json:"content"`
	ContentType    string `json:"content_type,omitempty"`
	Subject        string `json:"subject"`
	StreamID       int64  `json:"stream_id,omitempty"`
	Client         string `json:"client,omitempty"`
	Type           string `json:"type,omitempty"`
}

// NarrowTerm filters GET /messages, e.g. {stream general}.
type NarrowTerm struct {
	Operator string `json:"operator"`
	Operand  string `json:"operand"`
}

// StreamNarrow returns a narrow on one stream.
func StreamNarrow(stream string) []NarrowTerm {
	return []NarrowTerm{{Operator: "stream", Operand: stream}}
}

// TopicNarrow returns a narrow on one topic of a stream.
func TopicNarrow(stream, topic string) []NarrowTerm {
	return []NarrowTerm{
		{Operator: "stream", Operand: stream},
		{Operator: "topic", Operand: topic},
	}
}

// MessagesRequest is the query of GET /messages.
type MessagesRequest struct {
	Narrow         []NarrowTerm
	Anchor         int64
	NumBefore      int
	NumAfter       int
	ClientGravatar bool
	ApplyMarkdown  bool
}

// MessagesResponse is one page of GET /messages.
type MessagesResponse struct {
	Messages    []Message `json:"messages"`
	FoundNewest bool      `json:"found_newest"`
	FoundOldest bool      `json:"found_oldest"`
}

// envelope holds the fields every API response shares.
type envelope struct {
	Result     string  `json:"result"`
	Msg        string  `json:"msg"`
	Code       string  `json:"code"`
	RetryAfter float64 `json:"retry-after"`
}
