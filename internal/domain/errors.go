package domain

import "errors"

var (
	ErrInvalidMessage    = errors.New("invalid message")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidMembership = errors.New("chat requires at least two distinct members")
	ErrSelfChat          = errors.New("cannot open a chat with yourself")
	ErrMessageNotFound   = errors.New("message not found")
	ErrNoMessages        = errors.New("no messages between parties")
	ErrChatNotFound      = errors.New("chat not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrNotSender         = errors.New("user is not the message sender")
	ErrSenderMismatch    = errors.New("sender does not match caller")
	ErrNotMember         = errors.New("user not chat member")
	ErrChatExists        = errors.New("chat already exists")
	ErrUnauthenticated   = errors.New("unauthenticated")
)
