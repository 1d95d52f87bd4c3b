package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexileapp/lexile-server/internal/domain"
	domainerrors "github.com/lexileapp/lexile-server/internal/errors"
	"github.com/lexileapp/lexile-server/internal/llm"
	"github.com/lexileapp/lexile-server/internal/mindmap"
	"github.com/lexileapp/lexile-server/internal/search"
	"github.com/lexileapp/lexile-server/internal/store/sqlite"
)

// fakeCompleter replays canned answers and records requests.
type fakeCompleter struct {
	mu       sync.Mutex
	answers  []string
	err      error
	requests []llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.answers) == 0 {
		return "", nil
	}
	out := f.answers[0]
	if len(f.answers) > 1 {
		f.answers = f.answers[1:]
	}
	return out, nil
}

func (f *fakeCompleter) lastRequest() llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// openChatStore opens a sqlite chat store in a temp directory, indexing
// messages into an in-memory search index.
func openChatStore(t *testing.T) (*sqlite.Store, *search.SearchIndex) {
	t.Helper()

	chats, err := sqlite.Open(filepath.Join(t.TempDir(), "chats.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = chats.Close() })

	index, err := search.NewSearchIndex(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	chats.SetMessageIndexer(index)
	return chats, index
}

func newTestChatService(t *testing.T, completer llm.Completer) *ChatService {
	t.Helper()
	chats, _ := openChatStore(t)
	return NewChatService(chats, completer, discardLogger())
}

func TestChatService_CreateChat(t *testing.T) {
	svc := newTestChatService(t, nil)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "auth0|alice", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(chat.ID, "chat-"))
	assert.Equal(t, domain.DefaultChatTitle, chat.Title)
	assert.Equal(t, "auth0|alice", chat.UserSub)

	long, err := svc.CreateChat(ctx, "auth0|alice", strings.Repeat("é", 250))
	require.NoError(t, err)
	assert.Len(t, []rune(long.Title), domain.MaxChatTitleLength)

	chats, err := svc.ListChats(ctx, "auth0|alice")
	require.NoError(t, err)
	assert.Len(t, chats, 2)

	others, err := svc.ListChats(ctx, "auth0|bob")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestChatService_CreateMessage(t *testing.T) {
	svc := newTestChatService(t, nil)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "auth0|alice", "Homework")
	require.NoError(t, err)

	msg, err := svc.CreateMessage(ctx, "auth0|alice", chat.ID, domain.RoleUser, "What is a noun?")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg.ID, "msg-"))
	assert.Equal(t, chat.ID, msg.ChatID)

	messages, err := svc.ListMessages(ctx, "auth0|alice", chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "What is a noun?", messages[0].Content)
}

func TestChatService_CreateMessage_RequiresRoleAndContent(t *testing.T) {
	svc := newTestChatService(t, nil)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "auth0|alice", "")
	require.NoError(t, err)

	_, err = svc.CreateMessage(ctx, "auth0|alice", chat.ID, "", "hello")
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.CreateMessage(ctx, "auth0|alice", chat.ID, domain.RoleUser, "")
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "role and content required", derr.Message)
}

func TestChatService_ForeignChatIsNotFound(t *testing.T) {
	svc := newTestChatService(t, nil)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "auth0|alice", "Private")
	require.NoError(t, err)

	_, err = svc.ListMessages(ctx, "auth0|bob", chat.ID)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = svc.CreateMessage(ctx, "auth0|bob", chat.ID, domain.RoleUser, "sneaky")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	messages, err := svc.ListMessages(ctx, "auth0|alice", chat.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestChatService_Reply(t *testing.T) {
	completer := &fakeCompleter{answers: []string{"A noun names a person, place or thing."}}
	svc := newTestChatService(t, completer)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "auth0|alice", "")
	require.NoError(t, err)
	_, err = svc.CreateMessage(ctx, "auth0|alice", chat.ID, domain.RoleUser, "What is a noun?")
	require.NoError(t, err)

	reply, err := svc.Reply(ctx, "auth0|alice", chat.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAssistant, reply.Role)
	assert.Equal(t, "A noun names a person, place or thing.", reply.Content)

	req := completer.lastRequest()
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, llm.CompanionPrompt, req.Messages[0].Content)
	assert.Equal(t, "What is a noun?", req.Messages[1].Content)

	messages, err := svc.ListMessages(ctx, "auth0|alice", chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, reply.ID, messages[1].ID)
}

func TestChatService_Reply_UpstreamFailure(t *testing.T) {
	completer := &fakeCompleter{err: llm.ErrServer}
	svc := newTestChatService(t, completer)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "auth0|alice", "")
	require.NoError(t, err)
	_, err = svc.CreateMessage(ctx, "auth0|alice", chat.ID, domain.RoleUser, "hi")
	require.NoError(t, err)

	_, err = svc.Reply(ctx, "auth0|alice", chat.ID)
	require.ErrorIs(t, err, domainerrors.ErrUpstream)
	assert.True(t, errors.Is(err, llm.ErrServer))

	messages, err := svc.ListMessages(ctx, "auth0|alice", chat.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestChatService_Reply_NotConfigured(t *testing.T) {
	svc := newTestChatService(t, nil)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "auth0|alice", "")
	require.NoError(t, err)

	_, err = svc.Reply(ctx, "auth0|alice", chat.ID)
	require.ErrorIs(t, err, domainerrors.ErrUpstream)
}

func TestChatService_Mindmap(t *testing.T) {
	completer := &fakeCompleter{answers: []string{"mindmap\n  root((Nouns))\n    People"}}
	svc := newTestChatService(t, completer)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "auth0|alice", "")
	require.NoError(t, err)

	empty, err := svc.Mindmap(ctx, "auth0|alice", chat.ID, "")
	require.NoError(t, err)
	assert.Equal(t, mindmap.EmptyMindmap, empty.Source)
	assert.Equal(t, MindmapHeuristic, empty.Mode)

	_, err = svc.CreateMessage(ctx, "auth0|alice", chat.ID, domain.RoleUser, "What is a noun?")
	require.NoError(t, err)
	_, err = svc.CreateMessage(ctx, "auth0|alice", chat.ID, domain.RoleAssistant, "A noun names a person, place or thing.")
	require.NoError(t, err)

	heuristic, err := svc.Mindmap(ctx, "auth0|alice", chat.ID, MindmapHeuristic)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(heuristic.Source, "mindmap"))
	assert.Equal(t, "What is a noun?", heuristic.Topic)

	fromModel, err := svc.Mindmap(ctx, "auth0|alice", chat.ID, MindmapLLM)
	require.NoError(t, err)
	assert.Equal(t, MindmapLLM, fromModel.Mode)
	assert.Equal(t, "mindmap\n  root((Nouns))\n    People", fromModel.Source)

	_, err = svc.Mindmap(ctx, "auth0|alice", chat.ID, "radial")
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestChatService_Mindmap_FallsBackToHeuristic(t *testing.T) {
	completer := &fakeCompleter{answers: []string{"Sorry, I cannot draw that."}}
	svc := newTestChatService(t, completer)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "auth0|alice", "")
	require.NoError(t, err)
	_, err = svc.CreateMessage(ctx, "auth0|alice", chat.ID, domain.RoleUser, "Why is the sky blue?")
	require.NoError(t, err)

	result, err := svc.Mindmap(ctx, "auth0|alice", chat.ID, MindmapLLM)
	require.NoError(t, err)
	assert.Equal(t, MindmapHeuristic, result.Mode)
	assert.True(t, strings.HasPrefix(result.Source, "mindmap"))
}

func TestSearchService_Search(t *testing.T) {
	chats, index := openChatStore(t)
	chatSvc := NewChatService(chats, nil, discardLogger())
	searchSvc := NewSearchService(index, discardLogger())
	ctx := context.Background()

	aliceChat, err := chatSvc.CreateChat(ctx, "auth0|alice", "")
	require.NoError(t, err)
	bobChat, err := chatSvc.CreateChat(ctx, "auth0|bob", "")
	require.NoError(t, err)

	_, err = chatSvc.CreateMessage(ctx, "auth0|alice", aliceChat.ID, domain.RoleUser, "Tell me about volcanoes")
	require.NoError(t, err)
	_, err = chatSvc.CreateMessage(ctx, "auth0|bob", bobChat.ID, domain.RoleUser, "volcanoes are hot")
	require.NoError(t, err)

	res, err := searchSvc.Search(ctx, search.Params{UserSub: "auth0|alice", Query: "  volcanoes "})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, aliceChat.ID, res.Hits[0].ChatID)

	_, err = searchSvc.Search(ctx, search.Params{UserSub: "auth0|alice", Query: "   "})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}
