package domain

// Sender tells who produced a transcript entry.
type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// Message is one entry of the session transcript.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// BotMessage builds a transcript entry spoken by the bot.
func BotMessage(text string) Message {
	return Message{Text: text, Sender: SenderBot}
}

// UserMessage builds a transcript entry typed by the user.
func UserMessage(text string) Message {
	return Message{Text: text, Sender: SenderUser}
}
