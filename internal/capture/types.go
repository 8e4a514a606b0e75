package capture

import "time"

// Envelope holds the parsed envelope data from an IMAP message.
type Envelope struct {
	MessageID string
	Subject   string
	From      string
	Date      time.Time
	Flags     []string // \Seen, \Flagged, \Answered, \Deleted
	UID       uint32
}

// Message is a fetched mail message with its decoded bodies.
type Message struct {
	Envelope Envelope
	TextBody string
	HTMLBody string
}

// Key identifies a message for duplicate detection. Messages without a
// Message-ID fall back to their mailbox UID.
func (m Message) Key() string {
	if m.Envelope.MessageID != "" {
		return m.Envelope.MessageID
	}
	return "uid-" + uidString(m.Envelope.UID)
}

// Flagged reports whether the message carries the \Flagged flag.
func (m Message) Flagged() bool {
	for _, f := range m.Envelope.Flags {
		if f == `\Flagged` {
			return true
		}
	}
	return false
}
