package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-bff/internal/mocks"
	"chat-bff/internal/models"
	"chat-bff/internal/store"
)

const selfID = "user-self"

func newTestStore() *store.ConversationStore {
	return store.New(func() string { return selfID })
}

func conversation(id string, unread int) models.Conversation {
	return models.Conversation{ID: id, UnreadCount: unread}
}

func message(id, conversationID, senderID string) models.Message {
	return models.Message{
		ID:             id,
		ConversationID: conversationID,
		Type:           models.MessageTypeText,
		Content:        "hello",
		Sender:         models.Sender{ID: senderID},
	}
}

func TestSetConversationsDropsDuplicateIDs(t *testing.T) {
	s := newTestStore()
	s.SetConversations([]models.Conversation{
		conversation("A", 1),
		conversation("B", 0),
		conversation("A", 7),
	})

	list := s.Conversations()
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].ID)
	assert.Equal(t, 1, list[0].UnreadCount)
	assert.Equal(t, "B", list[1].ID)
}

func TestOnMessageReceivedMovesConversationToFront(t *testing.T) {
	s := newTestStore()
	s.SetConversations([]models.Conversation{
		conversation("A", 0),
		conversation("B", 2),
	})

	msg := message("m1", "B", "user-other")
	s.OnMessageReceived(msg)

	list := s.Conversations()
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].ID)
	assert.Equal(t, 3, list[0].UnreadCount)
	require.NotNil(t, list[0].LastMessage)
	assert.Equal(t, "m1", list[0].LastMessage.ID)
	assert.Equal(t, "A", list[1].ID)
}

func TestOnMessageReceivedAlreadyFirstStaysFirst(t *testing.T) {
	s := newTestStore()
	s.SetConversations([]models.Conversation{
		conversation("A", 0),
		conversation("B", 0),
	})

	s.OnMessageReceived(message("m1", "A", "user-other"))
	s.OnMessageReceived(message("m2", "A", "user-other"))

	list := s.Conversations()
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].ID)
	assert.Equal(t, 2, list[0].UnreadCount)
	assert.Equal(t, "m2", list[0].LastMessage.ID)
}

func TestOnMessageReceivedOwnMessageDoesNotIncrementUnread(t *testing.T) {
	s := newTestStore()
	s.SetConversations([]models.Conversation{conversation("A", 0)})

	s.OnMessageReceived(message("m1", "A", selfID))

	list := s.Conversations()
	assert.Equal(t, 0, list[0].UnreadCount)
	assert.Equal(t, "m1", list[0].LastMessage.ID)
}

func TestOnMessageReceivedNeverDuplicatesIDs(t *testing.T) {
	s := newTestStore()
	s.SetConversations([]models.Conversation{
		conversation("A", 0),
		conversation("B", 0),
		conversation("C", 0),
	})

	for _, id := range []string{"C", "B", "C", "A", "B"} {
		s.OnMessageReceived(message("m-"+id, id, "user-other"))
	}

	list := s.Conversations()
	require.Len(t, list, 3)
	seen := map[string]bool{}
	for _, conv := range list {
		assert.False(t, seen[conv.ID], "duplicate id %s", conv.ID)
		seen[conv.ID] = true
	}
	assert.Equal(t, "B", list[0].ID)
}

func TestOnMessageReceivedUnknownConversationMutatesNothing(t *testing.T) {
	s := newTestStore()
	s.SetConversations([]models.Conversation{conversation("A", 0)})

	s.OnMessageReceived(message("m1", "ghost", "user-other"))

	list := s.Conversations()
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].ID)
	assert.Nil(t, list[0].LastMessage)
	_, joined := s.Messages("ghost")
	assert.False(t, joined)
}

func TestOnMessageReceivedCacheOnlyAppendsWhenJoined(t *testing.T) {
	s := newTestStore()
	s.SetConversations([]models.Conversation{conversation("A", 0)})

	emitter := new(mocks.EmitterMock)
	emitter.On("Connected").Return(true)
	emitter.On("JoinConversation", mock.Anything, "A").Return([]models.Message{message("m0", "A", "user-other")}, nil).Once()
	s.SetEmitter(emitter)

	require.True(t, s.JoinConversation(context.Background(), "A"))

	// Joined conversation: cache appends.
	s.OnMessageReceived(message("m1", "A", "user-other"))
	history, joined := s.Messages("A")
	require.True(t, joined)
	require.Len(t, history, 2)
	assert.Equal(t, "m0", history[0].ID)
	assert.Equal(t, "m1", history[1].ID)

	// List summary still updates for a conversation that was never joined.
	s.SetConversations([]models.Conversation{conversation("A", 0), conversation("B", 0)})
	s.OnMessageReceived(message("m2", "B", "user-other"))
	_, joined = s.Messages("B")
	assert.False(t, joined)
	assert.Equal(t, "B", s.Conversations()[0].ID)
}

func TestJoinConversationWithoutChannelIsNoop(t *testing.T) {
	s := newTestStore()
	assert.False(t, s.JoinConversation(context.Background(), "A"))

	emitter := new(mocks.EmitterMock)
	emitter.On("Connected").Return(false)
	s.SetEmitter(emitter)
	assert.False(t, s.JoinConversation(context.Background(), "A"))

	_, joined := s.Messages("A")
	assert.False(t, joined)
}

func TestJoinConversationAckReplacesCache(t *testing.T) {
	s := newTestStore()
	emitter := new(mocks.EmitterMock)
	emitter.On("Connected").Return(true)
	emitter.On("JoinConversation", mock.Anything, "A").
		Return([]models.Message{message("old", "A", "user-other")}, nil).Once()
	emitter.On("JoinConversation", mock.Anything, "A").
		Return([]models.Message{message("new-1", "A", "user-other"), message("new-2", "A", "user-other")}, nil).Once()
	s.SetEmitter(emitter)

	require.True(t, s.JoinConversation(context.Background(), "A"))
	s.OnMessageReceived(message("local", "A", "user-other"))

	require.True(t, s.JoinConversation(context.Background(), "A"))
	history, joined := s.Messages("A")
	require.True(t, joined)
	require.Len(t, history, 2)
	assert.Equal(t, "new-1", history[0].ID)
	assert.Equal(t, "new-2", history[1].ID)
	emitter.AssertExpectations(t)
}

func TestUpdateUnreadCount(t *testing.T) {
	s := newTestStore()
	s.SetConversations([]models.Conversation{conversation("A", 5)})

	s.UpdateUnreadCount("A")
	assert.Equal(t, 0, s.Conversations()[0].UnreadCount)

	// Unknown id is a no-op.
	s.UpdateUnreadCount("ghost")
	assert.Len(t, s.Conversations(), 1)
}

func TestSetOnlineUsersWholesaleReplace(t *testing.T) {
	s := newTestStore()
	s.OnOnlineUsers([]string{"u1", "u2"})
	assert.Equal(t, []string{"u1", "u2"}, s.OnlineUsers())

	s.OnOnlineUsers([]string{"u3"})
	assert.Equal(t, []string{"u3"}, s.OnlineUsers())

	s.OnOnlineUsers(nil)
	assert.Empty(t, s.OnlineUsers())
}

func TestSendMessageRequiresChannel(t *testing.T) {
	s := newTestStore()
	assert.False(t, s.SendMessage("A", "hi"))

	emitter := new(mocks.EmitterMock)
	emitter.On("Connected").Return(true)
	emitter.On("SendMessage", "A", "hi").Return(nil).Once()
	s.SetEmitter(emitter)

	assert.True(t, s.SendMessage("A", "hi"))
	emitter.AssertExpectations(t)
}

func TestHandleFocusZeroesUnreadAndEmits(t *testing.T) {
	s := newTestStore()
	s.SetConversations([]models.Conversation{conversation("A", 4)})

	emitter := new(mocks.EmitterMock)
	emitter.On("Connected").Return(true)
	emitter.On("FocusInput", "A").Return(nil).Once()
	s.SetEmitter(emitter)

	s.HandleFocus("A")
	assert.Equal(t, 0, s.Conversations()[0].UnreadCount)
	emitter.AssertExpectations(t)
}

func TestHandleFocusWithoutChannelStillZeroes(t *testing.T) {
	s := newTestStore()
	s.SetConversations([]models.Conversation{conversation("A", 4)})

	s.HandleFocus("A")
	assert.Equal(t, 0, s.Conversations()[0].UnreadCount)
}
