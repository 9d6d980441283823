package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func profilesOf(callers ...domain.Caller) map[string]domain.Profile {
	out := make(map[string]domain.Profile, len(callers))
	for _, c := range callers {
		out[c.ID] = c.Profile
	}
	return out
}

func TestCreateChat(t *testing.T) {
	ctx := context.Background()
	key := domain.MemberKey([]string{alice.ID, bob.ID})

	t.Run("self chat is rejected before any lookup", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateChat(ctx, CreateChatCommand{Caller: alice, Handles: []string{"alice"}})
		assert.ErrorIs(t, err, domain.ErrSelfChat)
	})

	t.Run("unknown handle", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetUserByHandle", ctx, "ghost").Return(nil, nil).Once()
		_, err := f.svc.CreateChat(ctx, CreateChatCommand{Caller: alice, Handles: []string{"ghost"}})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("existing chat is returned", func(t *testing.T) {
		f := newFixture(t)
		existing := &domain.Chat{ID: "c1", Members: []string{alice.ID, bob.ID}}
		f.users.On("GetUserByHandle", ctx, "bob").Return(userOf(bob), nil).Once()
		f.chats.On("GetChatByMembership", ctx, mock.Anything, key, 100).Return(existing, nil).Once()
		f.users.On("GetProfiles", ctx, mock.Anything).Return(profilesOf(alice, bob), nil).Once()

		view, err := f.svc.CreateChat(ctx, CreateChatCommand{Caller: alice, Handles: []string{"bob"}})
		require.NoError(t, err)
		assert.Equal(t, "c1", view.ID)
		f.chats.AssertNotCalled(t, "InsertChat", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("new chat is seeded", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("GetUserByHandle", ctx, "bob").Return(userOf(bob), nil).Once()
		f.chats.On("GetChatByMembership", ctx, mock.Anything, key, 100).Return(nil, nil).Once()
		f.chats.On("InsertChat", ctx, mock.Anything, mock.MatchedBy(func(c *domain.Chat) bool {
			return len(c.Members) == 2 && len(c.Messages) == 1 &&
				c.Messages[0].Content == "Alice added Bob to this chat room." &&
				c.Messages[0].SenderID == alice.ID
		})).Return(nil).Once()
		f.outbox.On("InsertOutbox", ctx, mock.Anything, AggregateChat, "id-1", EventChatCreated, mock.Anything).Return(nil).Once()
		f.users.On("GetProfiles", ctx, mock.Anything).Return(profilesOf(alice, bob), nil).Once()

		view, err := f.svc.CreateChat(ctx, CreateChatCommand{Caller: alice, Handles: []string{"bob"}})
		require.NoError(t, err)
		assert.Equal(t, "id-1", view.ID)
		require.Len(t, view.Users, 2)
		require.Len(t, view.Messages, 1)
		assert.True(t, view.Messages[0].IsSender)
		assert.Equal(t, "Alice", view.Messages[0].Sender.FirstName)
	})

	t.Run("group chat", func(t *testing.T) {
		f := newFixture(t)
		groupKey := domain.MemberKey([]string{alice.ID, bob.ID, carol.ID})
		f.users.On("GetUserByHandle", ctx, "bob").Return(userOf(bob), nil).Once()
		f.users.On("GetUserByHandle", ctx, "carol").Return(userOf(carol), nil).Once()
		f.chats.On("GetChatByMembership", ctx, mock.Anything, groupKey, 100).Return(nil, nil).Once()
		f.chats.On("InsertChat", ctx, mock.Anything, mock.MatchedBy(func(c *domain.Chat) bool {
			return len(c.Members) == 3 && c.Messages[0].Content == "Alice added Bob and Carol to this chat room."
		})).Return(nil).Once()
		f.outbox.On("InsertOutbox", ctx, mock.Anything, AggregateChat, mock.Anything, EventChatCreated, mock.Anything).Return(nil).Once()
		f.users.On("GetProfiles", ctx, mock.Anything).Return(profilesOf(alice, bob, carol), nil).Once()

		view, err := f.svc.CreateChat(ctx, CreateChatCommand{Caller: alice, Handles: []string{"bob", "carol", "bob"}})
		require.NoError(t, err)
		assert.Len(t, view.Users, 3)
	})

	t.Run("lost race returns the winner", func(t *testing.T) {
		f := newFixture(t)
		winner := &domain.Chat{ID: "c-winner", Members: []string{alice.ID, bob.ID}}
		f.users.On("GetUserByHandle", ctx, "bob").Return(userOf(bob), nil).Once()
		f.chats.On("GetChatByMembership", ctx, mock.Anything, key, 100).Return(nil, nil).Once()
		f.chats.On("InsertChat", ctx, mock.Anything, mock.Anything).Return(domain.ErrChatExists).Once()
		f.chats.On("GetChatByMembership", ctx, mock.Anything, key, 100).Return(winner, nil).Once()
		f.users.On("GetProfiles", ctx, mock.Anything).Return(profilesOf(alice, bob), nil).Once()

		view, err := f.svc.CreateChat(ctx, CreateChatCommand{Caller: alice, Handles: []string{"bob"}})
		require.NoError(t, err)
		assert.Equal(t, "c-winner", view.ID)
	})
}

func TestGetChat(t *testing.T) {
	ctx := context.Background()

	t.Run("missing chat", func(t *testing.T) {
		f := newFixture(t)
		f.chats.On("GetChat", ctx, "c1", 100).Return(nil, nil).Once()
		_, err := f.svc.GetChat(ctx, GetChatQuery{Caller: alice, ChatID: "c1"})
		assert.ErrorIs(t, err, domain.ErrChatNotFound)
	})

	t.Run("non-member", func(t *testing.T) {
		f := newFixture(t)
		f.chats.On("GetChat", ctx, "c1", 100).Return(&domain.Chat{ID: "c1", Members: []string{alice.ID, bob.ID}}, nil).Once()
		_, err := f.svc.GetChat(ctx, GetChatQuery{Caller: carol, ChatID: "c1"})
		assert.ErrorIs(t, err, domain.ErrNotMember)
		f.users.AssertNotCalled(t, "GetProfiles", mock.Anything, mock.Anything)
	})

	t.Run("member sees the latest window", func(t *testing.T) {
		f := newFixture(t)
		chat := &domain.Chat{ID: "c1", Members: []string{alice.ID, bob.ID}}
		for i := 0; i < 150; i++ {
			sender := alice.ID
			if i%2 == 1 {
				sender = bob.ID
			}
			chat.Messages = append(chat.Messages, domain.ChatMessage{
				ID:       fmt.Sprintf("e%d", i),
				SenderID: sender,
				Position: int64(i + 1),
			})
		}
		f.chats.On("GetChat", ctx, "c1", 100).Return(chat, nil).Once()
		f.users.On("GetProfiles", ctx, mock.Anything).Return(profilesOf(alice, bob), nil).Once()

		view, err := f.svc.GetChat(ctx, GetChatQuery{Caller: bob, ChatID: "c1"})
		require.NoError(t, err)
		require.Len(t, view.Messages, 100)
		assert.Equal(t, "e50", view.Messages[0].ID)
		assert.Equal(t, "e149", view.Messages[99].ID)
		assert.False(t, view.Messages[0].IsSender)
		assert.True(t, view.Messages[99].IsSender)
	})
}

func TestListChats(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no chats", func(t *testing.T) {
		f := newFixture(t)
		f.chats.On("ListChatsForMember", ctx, alice.ID).Return([]*domain.Chat{}, nil).Once()
		views, err := f.svc.ListChats(ctx, ListChatsQuery{Caller: alice})
		require.NoError(t, err)
		assert.NotNil(t, views)
		assert.Empty(t, views)
	})

	t.Run("most recent first with one preview each", func(t *testing.T) {
		f := newFixture(t)
		quiet := &domain.Chat{ID: "quiet", Members: []string{alice.ID, bob.ID}, CreatedAt: base, Messages: []domain.ChatMessage{
			{ID: "q1", SenderID: alice.ID, CreatedAt: base.Add(time.Minute)},
		}}
		busy := &domain.Chat{ID: "busy", Members: []string{alice.ID, carol.ID}, CreatedAt: base, Messages: []domain.ChatMessage{
			{ID: "b1", SenderID: carol.ID, CreatedAt: base.Add(time.Minute)},
			{ID: "b2", SenderID: carol.ID, CreatedAt: base.Add(time.Hour)},
		}}
		f.chats.On("ListChatsForMember", ctx, alice.ID).Return([]*domain.Chat{quiet, busy}, nil).Once()
		f.users.On("GetProfiles", ctx, mock.Anything).Return(profilesOf(alice, bob, carol), nil).Once()

		views, err := f.svc.ListChats(ctx, ListChatsQuery{Caller: alice})
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, "busy", views[0].ID)
		require.Len(t, views[0].Messages, 1)
		assert.Equal(t, "b2", views[0].Messages[0].ID)
		assert.Equal(t, "Carol", views[0].Messages[0].Sender.FirstName)
		assert.Equal(t, "quiet", views[1].ID)
	})
}

func TestPostChatMessage(t *testing.T) {
	ctx := context.Background()
	members := []string{alice.ID, bob.ID}

	t.Run("missing chat is forbidden", func(t *testing.T) {
		f := newFixture(t)
		f.chats.On("ChatMembers", ctx, "nope").Return(nil, false, nil).Once()
		_, err := f.svc.PostChatMessage(ctx, PostChatMessageCommand{Caller: alice, ChatID: "nope", Content: "hi"})
		assert.ErrorIs(t, err, domain.ErrNotMember)
		f.chats.AssertNotCalled(t, "AppendChatMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		f := newFixture(t)
		f.chats.On("ChatMembers", ctx, "c1").Return(members, true, nil).Once()
		_, err := f.svc.PostChatMessage(ctx, PostChatMessageCommand{Caller: carol, ChatID: "c1", Content: "hi"})
		assert.ErrorIs(t, err, domain.ErrNotMember)
	})

	t.Run("store refusal is forbidden", func(t *testing.T) {
		f := newFixture(t)
		f.chats.On("ChatMembers", ctx, "c1").Return(members, true, nil).Once()
		f.chats.On("AppendChatMessage", ctx, mock.Anything, mock.Anything).Return(false, nil).Once()
		_, err := f.svc.PostChatMessage(ctx, PostChatMessageCommand{Caller: alice, ChatID: "c1", Content: "hi"})
		assert.ErrorIs(t, err, domain.ErrNotMember)
	})

	t.Run("blank content", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.PostChatMessage(ctx, PostChatMessageCommand{Caller: alice, ChatID: "c1", Content: " "})
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("member appends and gets the updated chat", func(t *testing.T) {
		f := newFixture(t)
		f.chats.On("ChatMembers", ctx, "c1").Return(members, true, nil).Once()
		f.chats.On("AppendChatMessage", ctx, mock.Anything, mock.MatchedBy(func(e *domain.ChatMessage) bool {
			return e.ChatID == "c1" && e.SenderID == bob.ID && e.Content == "hey"
		})).Run(func(args mock.Arguments) {
			args.Get(2).(*domain.ChatMessage).Position = 7
		}).Return(true, nil).Once()
		f.outbox.On("InsertOutbox", ctx, mock.Anything, AggregateChat, "c1", EventChatMessagePosted, mock.Anything).Return(nil).Once()
		f.chats.On("GetChat", ctx, "c1", 100).Return(&domain.Chat{
			ID:      "c1",
			Members: members,
			Messages: []domain.ChatMessage{
				{ID: "id-1", ChatID: "c1", SenderID: bob.ID, Content: "hey", Position: 7, CreatedAt: f.now},
			},
		}, nil).Once()
		f.users.On("GetProfiles", ctx, mock.Anything).Return(profilesOf(alice, bob), nil).Once()

		view, err := f.svc.PostChatMessage(ctx, PostChatMessageCommand{Caller: bob, ChatID: "c1", Content: " hey "})
		require.NoError(t, err)
		require.Len(t, view.Messages, 1)
		assert.True(t, view.Messages[0].IsSender)
		assert.Equal(t, "hey", view.Messages[0].Content)
	})
}
