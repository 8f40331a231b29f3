package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdesk-backend/internal/completion"
	"workdesk-backend/internal/config"
	"workdesk-backend/internal/models"
	"workdesk-backend/internal/store"
)

// fakeStore is an in-memory Store covering the operations the assistant
// service touches. It records the order of persistence calls so ordering
// guarantees can be asserted.
type fakeStore struct {
	store.Store // panic on anything not overridden

	mu            sync.Mutex
	conversations map[uuid.UUID]*models.Conversation
	messages      map[uuid.UUID][]models.Message
	settings      *models.AssistantSettings
	events        []string

	failCreateMessage bool
	failUpdateTitle   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		conversations: make(map[uuid.UUID]*models.Conversation),
		messages:      make(map[uuid.UUID][]models.Message),
	}
}

func (f *fakeStore) record(ev string) {
	f.events = append(f.events, ev)
}

func (f *fakeStore) CreateConversation(ctx context.Context, arg store.CreateConversationParams) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv := &models.Conversation{
		ID:             arg.ID,
		OrganizationID: arg.OrganizationID,
		UserID:         arg.UserID,
		Title:          arg.Title,
	}
	f.conversations[conv.ID] = conv
	f.record("create-conversation")
	return conv, nil
}

func (f *fakeStore) GetConversationByID(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[id]
	if !ok || conv.OrganizationID != orgID {
		return nil, store.ErrNotFound
	}
	return conv, nil
}

func (f *fakeStore) GetOrCreateActiveConversation(ctx context.Context, userID uuid.UUID, orgID uuid.UUID) (*models.Conversation, error) {
	f.mu.Lock()
	for _, c := range f.conversations {
		if c.UserID == userID && !c.Archived {
			f.mu.Unlock()
			return c, nil
		}
	}
	f.mu.Unlock()
	return f.CreateConversation(ctx, store.CreateConversationParams{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         userID,
	})
}

func (f *fakeStore) DeleteConversation(ctx context.Context, id uuid.UUID, orgID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.conversations[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.conversations, id)
	delete(f.messages, id)
	return nil
}

func (f *fakeStore) UpdateConversationTitle(ctx context.Context, id uuid.UUID, orgID uuid.UUID, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdateTitle {
		return errors.New("title patch rejected")
	}
	conv, ok := f.conversations[id]
	if !ok {
		return store.ErrNotFound
	}
	conv.Title = &title
	f.record("patch-title")
	return nil
}

func (f *fakeStore) CreateMessage(ctx context.Context, arg store.CreateMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateMessage {
		return nil, errors.New("insert failed")
	}
	if _, ok := f.conversations[arg.ConversationID]; !ok {
		return nil, store.ErrNotFound
	}
	msg := models.Message{
		ID:             arg.ID,
		ConversationID: arg.ConversationID,
		Role:           arg.Role,
		Content:        arg.Content,
		Sources:        arg.Sources,
	}
	f.messages[arg.ConversationID] = append(f.messages[arg.ConversationID], msg)
	f.record("save:" + arg.Role)
	return &msg, nil
}

func (f *fakeStore) ListMessagesByConversation(ctx context.Context, conversationID uuid.UUID, orgID uuid.UUID) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.messages[conversationID]...), nil
}

func (f *fakeStore) GetAssistantSettings(ctx context.Context, orgID uuid.UUID) (*models.AssistantSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		return nil, store.ErrNotFound
	}
	return f.settings, nil
}

// fakeCompleter returns a canned reply and records the requests it saw.
type fakeCompleter struct {
	mu       sync.Mutex
	requests []completion.Request
	reply    *completion.Result
	err      error

	onComplete func() // called before responding, for mid-flight coordination
	recorder   *fakeStore
}

func (f *fakeCompleter) Complete(ctx context.Context, req completion.Request) (*completion.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.recorder != nil {
		f.recorder.mu.Lock()
		f.recorder.record("complete")
		f.recorder.mu.Unlock()
	}
	if f.onComplete != nil {
		f.onComplete()
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &completion.Result{Content: "reply"}, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(userID uuid.UUID, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

func testConfig() *config.Config {
	return &config.Config{
		CompletionModel: "gpt-4o-mini",
		HistoryWindow:   6,
		TitleMaxLen:     48,
	}
}

func newTestService(fs *fakeStore, fc *fakeCompleter, fn *fakeNotifier) *AssistantService {
	return NewAssistantService(fs, fc, fn, testConfig())
}

func TestSend_PersistsUserBeforeCompletion(t *testing.T) {
	fs := newFakeStore()
	fc := &fakeCompleter{recorder: fs}
	svc := newTestService(fs, fc, &fakeNotifier{})

	userID, orgID := uuid.New(), uuid.New()
	_, err := svc.Send(context.Background(), userID, orgID, "hello")
	require.NoError(t, err)

	// Drop the conversation auto-create, keep the send lifecycle.
	var lifecycle []string
	for _, ev := range fs.events {
		if ev != "create-conversation" && ev != "patch-title" {
			lifecycle = append(lifecycle, ev)
		}
	}
	assert.Equal(t, []string{"save:user", "complete", "save:assistant"}, lifecycle)
}

func TestSend_AppendsUserThenAssistantLocally(t *testing.T) {
	fs := newFakeStore()
	fc := &fakeCompleter{reply: &completion.Result{
		Content: "On your plate today: the board sync.",
		Sources: []models.Source{{ID: "7", Kind: "events", Title: "Board sync"}},
	}}
	svc := newTestService(fs, fc, &fakeNotifier{})

	userID, orgID := uuid.New(), uuid.New()
	res, err := svc.Send(context.Background(), userID, orgID, "what's today?")
	require.NoError(t, err)
	assert.True(t, res.Appended)

	_, transcript := svc.Transcript(userID)
	require.Len(t, transcript, 2)
	assert.Equal(t, "user", transcript[0].Role)
	assert.Equal(t, "what's today?", transcript[0].Content)
	assert.Equal(t, "assistant", transcript[1].Role)
	require.Len(t, transcript[1].Sources, 1)
	assert.Equal(t, "Board sync", transcript[1].Sources[0].Title)

	msgs := fs.messages[res.ConversationID]
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestSend_CompletionFailureRollsBackAndNotifies(t *testing.T) {
	fs := newFakeStore()
	fc := &fakeCompleter{err: errors.New("upstream down")}
	fn := &fakeNotifier{}
	svc := newTestService(fs, fc, fn)

	userID, orgID := uuid.New(), uuid.New()
	_, err := svc.Send(context.Background(), userID, orgID, "hello")
	require.Error(t, err)

	// Optimistic append rolled back locally.
	_, transcript := svc.Transcript(userID)
	assert.Empty(t, transcript)

	// The user turn was already persisted and stays persisted.
	var persisted int
	for _, msgs := range fs.messages {
		persisted += len(msgs)
	}
	assert.Equal(t, 1, persisted)

	require.Len(t, fn.messages, 1)
}

func TestSend_UserSaveFailureReportedLikeCompletionFailure(t *testing.T) {
	fs := newFakeStore()
	fs.failCreateMessage = true
	fc := &fakeCompleter{}
	fn := &fakeNotifier{}
	svc := newTestService(fs, fc, fn)

	userID, orgID := uuid.New(), uuid.New()
	_, err := svc.Send(context.Background(), userID, orgID, "hello")
	require.Error(t, err)

	assert.Empty(t, fc.requests, "completion must not be requested when the user save fails")
	require.Len(t, fn.messages, 1)

	_, transcript := svc.Transcript(userID)
	assert.Empty(t, transcript)
}

func TestSend_FirstExchangeDerivesTitle(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, &fakeCompleter{}, &fakeNotifier{})

	userID, orgID := uuid.New(), uuid.New()
	long := strings.Repeat("plan ", 20) // 100 chars
	res, err := svc.Send(context.Background(), userID, orgID, long)
	require.NoError(t, err)

	conv := fs.conversations[res.ConversationID]
	require.NotNil(t, conv.Title)
	assert.True(t, strings.HasSuffix(*conv.Title, "…"))
	assert.Len(t, []rune(*conv.Title), 48+1)
}

func TestSend_LaterExchangesDoNotRetitle(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, &fakeCompleter{}, &fakeNotifier{})

	userID, orgID := uuid.New(), uuid.New()
	res, err := svc.Send(context.Background(), userID, orgID, "first question")
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), userID, orgID, "second question")
	require.NoError(t, err)

	conv := fs.conversations[res.ConversationID]
	require.NotNil(t, conv.Title)
	assert.Equal(t, "first question", *conv.Title)
}

func TestSend_TitlePatchFailureIsSwallowed(t *testing.T) {
	fs := newFakeStore()
	fs.failUpdateTitle = true
	fn := &fakeNotifier{}
	svc := newTestService(fs, &fakeCompleter{}, fn)

	userID, orgID := uuid.New(), uuid.New()
	_, err := svc.Send(context.Background(), userID, orgID, "hello")
	require.NoError(t, err)
	assert.Empty(t, fn.messages)
}

func TestSend_SwitchMidFlightRoutesReplyToOrigin(t *testing.T) {
	fs := newFakeStore()
	fn := &fakeNotifier{}
	fc := &fakeCompleter{}
	svc := newTestService(fs, fc, fn)

	userID, orgID := uuid.New(), uuid.New()
	origin, err := svc.Resolve(context.Background(), userID, orgID)
	require.NoError(t, err)

	other, err := fs.CreateConversation(context.Background(), store.CreateConversationParams{
		ID: uuid.New(), OrganizationID: orgID, UserID: userID,
	})
	require.NoError(t, err)

	// Switch away while the completion call is in flight.
	fc.onComplete = func() {
		require.NoError(t, svc.Switch(context.Background(), userID, orgID, other.ID))
	}

	res, err := svc.Send(context.Background(), userID, orgID, "hello")
	require.NoError(t, err)

	assert.Equal(t, origin.ID, res.ConversationID)
	assert.False(t, res.Appended, "reply must not land in the now-active transcript")

	activeID, transcript := svc.Transcript(userID)
	assert.Equal(t, other.ID, activeID)
	for _, m := range transcript {
		assert.NotEqual(t, "assistant", m.Role)
	}

	// Persisted to the originating conversation regardless.
	msgs := fs.messages[origin.ID]
	require.Len(t, msgs, 2)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestSend_FailureAfterSwitchLeavesOtherTranscriptIntact(t *testing.T) {
	fs := newFakeStore()
	fn := &fakeNotifier{}
	fc := &fakeCompleter{err: errors.New("upstream down")}
	svc := newTestService(fs, fc, fn)

	userID, orgID := uuid.New(), uuid.New()
	_, err := svc.Resolve(context.Background(), userID, orgID)
	require.NoError(t, err)

	other, err := fs.CreateConversation(context.Background(), store.CreateConversationParams{
		ID: uuid.New(), OrganizationID: orgID, UserID: userID,
	})
	require.NoError(t, err)
	for _, content := range []string{"b1", "b2"} {
		_, err = fs.CreateMessage(context.Background(), store.CreateMessageParams{
			ID: uuid.New(), ConversationID: other.ID, OrganizationID: orgID,
			Role: "user", Content: content,
		})
		require.NoError(t, err)
	}

	// Switch away mid-flight, then let the completion fail.
	fc.onComplete = func() {
		require.NoError(t, svc.Switch(context.Background(), userID, orgID, other.ID))
	}

	_, err = svc.Send(context.Background(), userID, orgID, "hello")
	require.Error(t, err)
	require.Len(t, fn.messages, 1)

	// The rollback belongs to the originating conversation; the switched-to
	// transcript keeps every message it loaded.
	activeID, transcript := svc.Transcript(userID)
	assert.Equal(t, other.ID, activeID)
	require.Len(t, transcript, 2)
	assert.Equal(t, "b1", transcript[0].Content)
	assert.Equal(t, "b2", transcript[1].Content)
}

func TestSend_HistoryWindowIsBoundedAndOldestFirst(t *testing.T) {
	fs := newFakeStore()
	fc := &fakeCompleter{}
	svc := newTestService(fs, fc, &fakeNotifier{})

	userID, orgID := uuid.New(), uuid.New()
	for i := 0; i < 5; i++ {
		_, err := svc.Send(context.Background(), userID, orgID, fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	last := fc.requests[len(fc.requests)-1]
	require.Len(t, last.History, 6, "window capped at the configured size")
	// Oldest-first, ending with the reply to question 3.
	assert.Equal(t, "user", last.History[0].Role)
	assert.Equal(t, "question 1", last.History[0].Content)
	assert.Equal(t, "assistant", last.History[5].Role)
}

func TestSend_HistoryWindowFromOrgSettings(t *testing.T) {
	fs := newFakeStore()
	window := 2
	model := "gpt-4o"
	prompt := "You are a scheduling assistant."
	fs.settings = &models.AssistantSettings{
		HistoryWindow: &window,
		LLMModel:      &model,
		SystemPrompt:  &prompt,
	}
	fc := &fakeCompleter{}
	svc := newTestService(fs, fc, &fakeNotifier{})

	userID, orgID := uuid.New(), uuid.New()
	for i := 0; i < 3; i++ {
		_, err := svc.Send(context.Background(), userID, orgID, fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}

	last := fc.requests[len(fc.requests)-1]
	assert.Len(t, last.History, 2)
	assert.Equal(t, "gpt-4o", last.Model)
	assert.Equal(t, prompt, last.SystemPrompt)
}

func TestSend_EmptyMessageRejected(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeCompleter{}, &fakeNotifier{})
	_, err := svc.Send(context.Background(), uuid.New(), uuid.New(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestNewConversation_ClearsTranscriptAndActivates(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, &fakeCompleter{}, &fakeNotifier{})

	userID, orgID := uuid.New(), uuid.New()
	_, err := svc.Send(context.Background(), userID, orgID, "hello")
	require.NoError(t, err)

	conv, err := svc.NewConversation(context.Background(), userID, orgID)
	require.NoError(t, err)

	activeID, transcript := svc.Transcript(userID)
	assert.Equal(t, conv.ID, activeID)
	assert.Empty(t, transcript)
}

func TestDeleteActiveConversation_ClearsStateWithoutReplacement(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, &fakeCompleter{}, &fakeNotifier{})

	userID, orgID := uuid.New(), uuid.New()
	res, err := svc.Send(context.Background(), userID, orgID, "hello")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteConversation(context.Background(), userID, orgID, res.ConversationID))

	activeID, transcript := svc.Transcript(userID)
	assert.Equal(t, uuid.Nil, activeID)
	assert.Empty(t, transcript)
	assert.Empty(t, fs.conversations, "no replacement conversation is auto-created")
}

func TestDeleteOtherConversation_KeepsActiveState(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, &fakeCompleter{}, &fakeNotifier{})

	userID, orgID := uuid.New(), uuid.New()
	res, err := svc.Send(context.Background(), userID, orgID, "hello")
	require.NoError(t, err)

	other, err := fs.CreateConversation(context.Background(), store.CreateConversationParams{
		ID: uuid.New(), OrganizationID: orgID, UserID: userID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteConversation(context.Background(), userID, orgID, other.ID))

	activeID, transcript := svc.Transcript(userID)
	assert.Equal(t, res.ConversationID, activeID)
	assert.Len(t, transcript, 2)
}

func TestSwitch_ReplacesTranscriptWholesale(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs, &fakeCompleter{}, &fakeNotifier{})

	userID, orgID := uuid.New(), uuid.New()
	first, err := svc.Send(context.Background(), userID, orgID, "hello")
	require.NoError(t, err)

	conv, err := svc.NewConversation(context.Background(), userID, orgID)
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), userID, orgID, "second thread")
	require.NoError(t, err)
	_ = conv

	require.NoError(t, svc.Switch(context.Background(), userID, orgID, first.ConversationID))

	activeID, transcript := svc.Transcript(userID)
	assert.Equal(t, first.ConversationID, activeID)
	require.Len(t, transcript, 2)
	assert.Equal(t, "hello", transcript[0].Content)
}

func TestSwitch_UnknownConversation(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeCompleter{}, &fakeNotifier{})
	err := svc.Switch(context.Background(), uuid.New(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrConversationNotFound)
}
