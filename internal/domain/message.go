package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const MaxContentLength = 5000

type MessageStatus string

const (
	MessageSent   MessageStatus = "sent"
	MessageEdited MessageStatus = "edited"
)

// Message Invariants:
// 1. SenderID is the caller that created the message and never changes.
// 2. Edits touch Content, Status and UpdatedAt only.
// 3. Content is never empty after trimming.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	Status     MessageStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewMessage(
	id string,
	senderID string,
	receiverID string,
	content string,
	now time.Time,
) (*Message, error) {

	if id == "" || senderID == "" {
		return nil, ErrInvalidMessage
	}

	if err := ValidateMessageInput(receiverID, content); err != nil {
		return nil, err
	}

	return &Message{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: strings.TrimSpace(receiverID),
		Content:    NormalizeContent(content),
		Status:     MessageSent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Edit replaces the content. Ownership and "unchanged" checks belong to
// the authorization layer; Edit only enforces content validity.
func (m *Message) Edit(content string, now time.Time) error {
	if err := ValidateContent("content", content).OrNil(); err != nil {
		return err
	}
	m.Content = NormalizeContent(content)
	m.Status = MessageEdited
	m.UpdatedAt = now
	return nil
}

// ValidateMessageInput reports every problem with a new direct message.
func ValidateMessageInput(receiverID, content string) error {
	verr := &ValidationError{}
	if strings.TrimSpace(receiverID) == "" {
		verr.Add("receiver", "body", receiverID, "Receiver must not be empty")
	}
	verr.Merge(ValidateContent("content", content))
	return verr.OrNil()
}

func NormalizeContent(content string) string {
	return strings.TrimSpace(content)
}

// ValidateContent checks a message body and reports problems under field.
func ValidateContent(field, content string) *ValidationError {
	verr := &ValidationError{}
	trimmed := NormalizeContent(content)
	switch {
	case trimmed == "":
		verr.Add(field, "body", content, "Content must not be empty")
	case utf8.RuneCountInString(trimmed) > MaxContentLength:
		verr.Add(field, "body", "", "Content must be at most 5000 characters")
	}
	return verr
}
