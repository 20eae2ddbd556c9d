package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mallfront/internal/client"
	"github.com/mallfront/internal/constants"
	"github.com/mallfront/internal/models"
	"github.com/mallfront/internal/store"
)

type fakeAssistant struct {
	sessions int
	reply    string
	sendErr  error
	sent     []string
	flags    []string
	messages map[string][]client.AssistantMessage
}

func (f *fakeAssistant) CreateSession(_ context.Context, _ uint) (string, error) {
	f.sessions++
	return fmt.Sprintf("sess-%d", f.sessions), nil
}

func (f *fakeAssistant) GetMessages(_ context.Context, sessionID string) ([]client.AssistantMessage, error) {
	return f.messages[sessionID], nil
}

func (f *fakeAssistant) SendMessage(_ context.Context, _, text, flag string) (string, error) {
	f.sent = append(f.sent, text)
	f.flags = append(f.flags, flag)
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.reply, nil
}

type fakeArchiver struct {
	conversations []string
}

func (f *fakeArchiver) EnqueueTranscriptArchive(_ context.Context, _ uint, conversationID string) error {
	f.conversations = append(f.conversations, conversationID)
	return nil
}

func newTestChatService(assistant *fakeAssistant, historyLimit int) (*ChatService, *fakeArchiver) {
	archiver := &fakeArchiver{}
	// 取消逐字输出的时间敏感性：用长间隔，测试里显式取消
	return NewChatService(store.NewMemStore(), assistant, archiver, time.Hour, historyLimit), archiver
}

const testWelcome = "你好 测试用户，我是商城助手"

func TestChatOpenCreatesSessionWithWelcome(t *testing.T) {
	assistant := &fakeAssistant{}
	s, _ := newTestChatService(assistant, 10)

	view, err := s.Open(context.Background(), 1, "", testWelcome)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if view.SessionID != "sess-1" {
		t.Fatalf("unexpected session id: %s", view.SessionID)
	}
	if view.ConversationID == "" {
		t.Fatal("expected conversation id to be assigned")
	}
	if len(view.Messages) != 1 {
		t.Fatalf("expected welcome message, got %d messages", len(view.Messages))
	}
	welcome := view.Messages[0]
	if welcome.Sender != constants.ChatSenderBot || welcome.Text != testWelcome {
		t.Fatalf("unexpected welcome message: %+v", welcome)
	}
}

func TestChatOpenReusesCurrentSession(t *testing.T) {
	assistant := &fakeAssistant{}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	first, err := s.Open(ctx, 1, "", testWelcome)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}

	for _, raw := range []string{"", "null", "NULL", "undefined", "  "} {
		again, err := s.Open(ctx, 1, raw, testWelcome)
		if err != nil {
			t.Fatalf("reopen with %q: %v", raw, err)
		}
		if again.SessionID != first.SessionID {
			t.Fatalf("reopen with %q created new session %s", raw, again.SessionID)
		}
	}
	if assistant.sessions != 1 {
		t.Fatalf("expected single upstream session, got %d", assistant.sessions)
	}
}

func TestChatOpenRefetchesTranscriptForBareSession(t *testing.T) {
	assistant := &fakeAssistant{messages: map[string][]client.AssistantMessage{
		"sess-up": {
			{ID: "m1", Role: "user", Text: "之前的问题", CreatedAt: time.Now()},
			{ID: "m2", Role: "assistant", Text: "之前的回答", CreatedAt: time.Now()},
		},
	}}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	// 只有会话标识、没有消息的本地快照（例如存储被部分清理后）
	seed := &models.ChatSessionSnapshot{SessionID: "sess-up", ConversationID: "conv-up"}
	if err := s.store.Save(ctx, chatSessionKey(1), seed); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	view, err := s.Open(ctx, 1, "", testWelcome)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if view.SessionID != "sess-up" || view.ConversationID != "conv-up" {
		t.Fatalf("expected seeded session kept, got %+v", view)
	}
	if assistant.sessions != 0 {
		t.Fatalf("must not create a new upstream session, got %d", assistant.sessions)
	}
	if len(view.Messages) != 2 {
		t.Fatalf("expected upstream transcript, got %d messages", len(view.Messages))
	}
	if view.Messages[0].Sender != constants.ChatSenderUser || view.Messages[0].Text != "之前的问题" {
		t.Fatalf("unexpected first message: %+v", view.Messages[0])
	}
	if view.Messages[1].Sender != constants.ChatSenderBot {
		t.Fatalf("unexpected second message: %+v", view.Messages[1])
	}

	// 补拉结果已落盘，再次打开不再访问上游
	assistant.messages = nil
	again, err := s.Open(ctx, 1, "", testWelcome)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(again.Messages) != 2 {
		t.Fatalf("expected persisted transcript, got %d messages", len(again.Messages))
	}
}

func TestChatOpenBareSessionEmptyUpstreamGetsWelcome(t *testing.T) {
	assistant := &fakeAssistant{}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	seed := &models.ChatSessionSnapshot{SessionID: "sess-up", ConversationID: "conv-up"}
	if err := s.store.Save(ctx, chatSessionKey(1), seed); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	view, err := s.Open(ctx, 1, "", testWelcome)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(view.Messages) != 1 || view.Messages[0].Text != testWelcome {
		t.Fatalf("expected welcome substitution, got %+v", view.Messages)
	}
}

func TestChatSendConfirmsAndReplies(t *testing.T) {
	assistant := &fakeAssistant{reply: "plain reply"}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	if _, err := s.Open(ctx, 1, "", testWelcome); err != nil {
		t.Fatalf("open: %v", err)
	}
	result, err := s.Send(ctx, 1, "你们有什么推荐？", "", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !result.Delivered {
		t.Fatal("expected delivered result")
	}
	if result.UserMessage.Delivery != constants.ChatDeliveryConfirmed {
		t.Fatalf("expected confirmed user message, got %s", result.UserMessage.Delivery)
	}
	if result.BotMessage == nil || result.BotMessage.Text != "plain reply" {
		t.Fatalf("unexpected bot message: %+v", result.BotMessage)
	}
	if result.BotMessage.IsMarkup {
		t.Fatal("plain text reply must not be markup")
	}
	if result.BotMessage.ReplyTo != result.UserMessage.ID {
		t.Fatal("bot message must reference the user message")
	}

	view, err := s.Open(ctx, 1, "", testWelcome)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(view.Messages) != 3 {
		t.Fatalf("expected welcome + user + bot, got %d", len(view.Messages))
	}
}

func TestChatSendMarkupDetection(t *testing.T) {
	cases := []struct {
		reply  string
		markup bool
	}{
		{"just words", false},
		{"**bold** pitch", true},
		{"see [link](https://example.com)", true},
		{"# heading", true},
		{"code `snippet`", true},
		{"great deal!", true},
		{"brace {x}", true},
		{"under_score", true},
		{"中文纯文本回复", false},
	}
	for _, tc := range cases {
		assistant := &fakeAssistant{reply: tc.reply}
		s, _ := newTestChatService(assistant, 10)
		ctx := context.Background()
		if _, err := s.Open(ctx, 1, "", testWelcome); err != nil {
			t.Fatalf("open: %v", err)
		}
		result, err := s.Send(ctx, 1, "hi", "", "")
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		if result.BotMessage.IsMarkup != tc.markup {
			t.Errorf("reply %q: expected markup=%v", tc.reply, tc.markup)
		}
	}
}

func TestChatSendCannedQueryForcesMarkup(t *testing.T) {
	assistant := &fakeAssistant{reply: "plain list"}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	if _, err := s.Open(ctx, 1, "", testWelcome); err != nil {
		t.Fatalf("open: %v", err)
	}
	result, err := s.Send(ctx, 1, "", constants.ChatFlagBestSelling, "")
	if err != nil {
		t.Fatalf("send canned query: %v", err)
	}
	if result.UserMessage.Text == "" {
		t.Fatal("expected canned query text to be filled in")
	}
	if !result.BotMessage.IsMarkup {
		t.Fatal("canned query reply must be markup")
	}

	result, err = s.Send(ctx, 1, "", constants.ChatFlagTopRated, "")
	if err != nil {
		t.Fatalf("send canned query: %v", err)
	}
	if !result.BotMessage.IsMarkup {
		t.Fatal("canned query reply must be markup")
	}

	// 预置问题标识要原样传给上游
	want := []string{constants.ChatFlagBestSelling, constants.ChatFlagTopRated}
	if len(assistant.flags) != len(want) {
		t.Fatalf("expected %d upstream sends, got %d", len(want), len(assistant.flags))
	}
	for i, flag := range want {
		if assistant.flags[i] != flag {
			t.Fatalf("expected flag %s forwarded upstream, got %q", flag, assistant.flags[i])
		}
	}
}

func TestChatSendFreeTextOmitsFlag(t *testing.T) {
	assistant := &fakeAssistant{reply: "ok"}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	if _, err := s.Open(ctx, 1, "", testWelcome); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Send(ctx, 1, "普通提问", "", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(assistant.flags) != 1 || assistant.flags[0] != "" {
		t.Fatalf("free text must not carry a flag, got %v", assistant.flags)
	}
}

func TestChatSendEmptyRejected(t *testing.T) {
	assistant := &fakeAssistant{}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	if _, err := s.Open(ctx, 1, "", testWelcome); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Send(ctx, 1, "   ", "", ""); !errors.Is(err, ErrMessageEmpty) {
		t.Fatalf("expected ErrMessageEmpty, got %v", err)
	}
}

func TestChatSendWithoutSession(t *testing.T) {
	assistant := &fakeAssistant{}
	s, _ := newTestChatService(assistant, 10)

	if _, err := s.Send(context.Background(), 1, "hi", "", ""); !errors.Is(err, ErrSessionUnavailable) {
		t.Fatalf("expected ErrSessionUnavailable, got %v", err)
	}
}

func TestChatSendFailureKeepsMessageMarkedFailed(t *testing.T) {
	assistant := &fakeAssistant{sendErr: client.ErrRequestFailed}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	if _, err := s.Open(ctx, 1, "", testWelcome); err != nil {
		t.Fatalf("open: %v", err)
	}
	result, err := s.Send(ctx, 1, "hello?", "", "发送失败，请稍后重试")
	if err != nil {
		t.Fatalf("send should surface result, got error %v", err)
	}
	if result.Delivered {
		t.Fatal("expected undelivered result")
	}
	if result.UserMessage.Delivery != constants.ChatDeliveryFailed {
		t.Fatalf("expected failed delivery tag, got %s", result.UserMessage.Delivery)
	}
	if result.BotMessage == nil || result.BotMessage.Text != "发送失败，请稍后重试" {
		t.Fatalf("expected bot error message on failure, got %+v", result.BotMessage)
	}
	if result.BotMessage.ReplyTo != result.UserMessage.ID {
		t.Fatal("bot error message must reference the failed user message")
	}

	// 失败的消息与错误提示都保留在会话记录中
	view, err := s.Open(ctx, 1, "", testWelcome)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(view.Messages) != 3 {
		t.Fatalf("expected welcome + user + error, got %d", len(view.Messages))
	}
	userMsg := view.Messages[1]
	if userMsg.Text != "hello?" || userMsg.Delivery != constants.ChatDeliveryFailed {
		t.Fatalf("expected failed message in transcript, got %+v", userMsg)
	}
	if view.Messages[2].ReplyTo != userMsg.ID {
		t.Fatalf("expected error reply in transcript, got %+v", view.Messages[2])
	}
}

type blockingAssistant struct {
	fakeAssistant
	started chan struct{}
	release chan struct{}
}

func (f *blockingAssistant) SendMessage(ctx context.Context, sessionID, text, flag string) (string, error) {
	close(f.started)
	<-f.release
	return f.fakeAssistant.SendMessage(ctx, sessionID, text, flag)
}

func TestChatSendRejectsConcurrentSend(t *testing.T) {
	assistant := &blockingAssistant{
		fakeAssistant: fakeAssistant{reply: "ok"},
		started:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	archiver := &fakeArchiver{}
	s := NewChatService(store.NewMemStore(), assistant, archiver, time.Hour, 10)
	ctx := context.Background()

	if _, err := s.Open(ctx, 1, "", testWelcome); err != nil {
		t.Fatalf("open: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(ctx, 1, "slow question", "", "")
		done <- err
	}()
	<-assistant.started

	if _, err := s.Send(ctx, 1, "impatient question", "", ""); !errors.Is(err, ErrSendInFlight) {
		t.Fatalf("expected ErrSendInFlight, got %v", err)
	}

	close(assistant.release)
	if err := <-done; err != nil {
		t.Fatalf("first send: %v", err)
	}
}

func TestChatSendFlushesPendingReveal(t *testing.T) {
	assistant := &fakeAssistant{reply: "第一条长回复"}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	if _, err := s.Open(ctx, 1, "", testWelcome); err != nil {
		t.Fatalf("open: %v", err)
	}
	first, err := s.Send(ctx, 1, "hi", "", "")
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	if typing, ok := s.Typing(1); !ok || typing.Done {
		t.Fatalf("expected reveal in progress, got %+v", typing)
	}

	assistant.reply = "第二条回复"
	second, err := s.Send(ctx, 1, "again", "", "")
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	typing, ok := s.Typing(1)
	if !ok {
		t.Fatal("expected typing state for second reply")
	}
	if typing.MessageID == first.BotMessage.ID {
		t.Fatal("expected typing buffer handed over to the new reply")
	}
	if typing.MessageID != second.BotMessage.ID {
		t.Fatalf("typing buffer tracks wrong message: %s", typing.MessageID)
	}
}

func TestChatRevealProgressesCharacterByCharacter(t *testing.T) {
	reply := "逐字输出的完整回复 with some latin tail"
	assistant := &fakeAssistant{reply: reply}
	s := NewChatService(store.NewMemStore(), assistant, &fakeArchiver{}, time.Millisecond, 10)
	ctx := context.Background()

	if _, err := s.Open(ctx, 1, "", testWelcome); err != nil {
		t.Fatalf("open: %v", err)
	}
	result, err := s.Send(ctx, 1, "hi", "", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	// 缓冲区只能单调增长，且任一时刻都是全文的前缀
	deadline := time.Now().Add(10 * time.Second)
	last := ""
	for {
		typing, ok := s.Typing(1)
		if !ok {
			t.Fatal("expected typing state during reveal")
		}
		if typing.MessageID != result.BotMessage.ID {
			t.Fatalf("typing buffer tracks wrong message: %s", typing.MessageID)
		}
		if !strings.HasPrefix(reply, typing.Text) {
			t.Fatalf("typing buffer is not a prefix of the reply: %q", typing.Text)
		}
		if !strings.HasPrefix(typing.Text, last) {
			t.Fatalf("typing buffer went backwards: %q -> %q", last, typing.Text)
		}
		last = typing.Text
		if typing.Done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("reveal did not finish, stuck at %q", last)
		}
		time.Sleep(time.Millisecond)
	}
	if last != reply {
		t.Fatalf("completed reveal must hold the full reply, got %q", last)
	}
}

func TestChatRevealCancelFlushesFullText(t *testing.T) {
	assistant := &fakeAssistant{reply: "长回复需要逐字输出"}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	if _, err := s.Open(ctx, 1, "", testWelcome); err != nil {
		t.Fatalf("open: %v", err)
	}
	result, err := s.Send(ctx, 1, "hi", "", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	typing, ok := s.Typing(1)
	if !ok {
		t.Fatal("expected typing state after send")
	}
	if typing.Done {
		t.Fatal("expected reveal still in progress")
	}
	if typing.MessageID != result.BotMessage.ID {
		t.Fatalf("typing buffer tracks wrong message: %s", typing.MessageID)
	}

	if !s.CancelReveal(1) {
		t.Fatal("expected cancel to hit an active reveal")
	}
	typing, ok = s.Typing(1)
	if !ok || !typing.Done {
		t.Fatalf("expected finished reveal after cancel, got %+v", typing)
	}
	if typing.Text != result.BotMessage.Text {
		t.Fatalf("cancel must flush full text, got %q", typing.Text)
	}

	// 会话记录中的全文不受取消影响
	view, err := s.Open(ctx, 1, "", testWelcome)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	last := view.Messages[len(view.Messages)-1]
	if last.Text != result.BotMessage.Text {
		t.Fatalf("transcript must keep full reply, got %q", last.Text)
	}
}

func TestChatNewSessionArchivesCurrent(t *testing.T) {
	assistant := &fakeAssistant{reply: "ok"}
	s, archiver := newTestChatService(assistant, 10)
	ctx := context.Background()

	first, err := s.Open(ctx, 1, "", testWelcome)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Send(ctx, 1, "first question", "", ""); err != nil {
		t.Fatalf("send: %v", err)
	}

	fresh, err := s.NewSession(ctx, 1, testWelcome)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if fresh.SessionID == first.SessionID {
		t.Fatal("expected a new upstream session")
	}
	if len(fresh.Messages) != 1 {
		t.Fatalf("expected only welcome in new session, got %d", len(fresh.Messages))
	}

	summaries, err := s.History(ctx, 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(summaries))
	}
	if summaries[0].ConversationID != first.ConversationID {
		t.Fatalf("unexpected archived conversation: %s", summaries[0].ConversationID)
	}
	if summaries[0].Preview != "ok" {
		t.Fatalf("expected preview from last message, got %q", summaries[0].Preview)
	}
	if len(archiver.conversations) != 1 || archiver.conversations[0] != first.ConversationID {
		t.Fatalf("expected archive task enqueued, got %v", archiver.conversations)
	}
}

func TestChatNewSessionSkipsEmptyConversation(t *testing.T) {
	assistant := &fakeAssistant{}
	s, archiver := newTestChatService(assistant, 10)
	ctx := context.Background()

	if _, err := s.Open(ctx, 1, "", testWelcome); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.NewSession(ctx, 1, testWelcome); err != nil {
		t.Fatalf("new session: %v", err)
	}

	summaries, err := s.History(ctx, 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("conversation without user messages must not be archived, got %d", len(summaries))
	}
	if len(archiver.conversations) != 0 {
		t.Fatalf("expected no archive task, got %v", archiver.conversations)
	}
}

func TestChatOpenRestoresFromHistory(t *testing.T) {
	assistant := &fakeAssistant{reply: "answer"}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	first, err := s.Open(ctx, 1, "", testWelcome)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Send(ctx, 1, "remember me", "", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := s.NewSession(ctx, 1, testWelcome); err != nil {
		t.Fatalf("new session: %v", err)
	}

	restored, err := s.Open(ctx, 1, first.ConversationID, testWelcome)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.ConversationID != first.ConversationID {
		t.Fatalf("unexpected conversation id: %s", restored.ConversationID)
	}
	if restored.SessionID != first.SessionID {
		t.Fatalf("conversation must map back to its session, got %s", restored.SessionID)
	}
	found := false
	for _, m := range restored.Messages {
		if m.Text == "remember me" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected restored transcript to contain sent message")
	}
}

func TestChatOpenUnknownConversation(t *testing.T) {
	assistant := &fakeAssistant{}
	s, _ := newTestChatService(assistant, 10)

	_, err := s.Open(context.Background(), 1, "no-such-conversation", testWelcome)
	if !errors.Is(err, ErrHistoryNotFound) {
		t.Fatalf("expected ErrHistoryNotFound, got %v", err)
	}
}

func TestChatHistoryCapEvictsOldest(t *testing.T) {
	assistant := &fakeAssistant{reply: "ok"}
	s, _ := newTestChatService(assistant, 3)
	ctx := context.Background()

	var conversations []string
	for i := 0; i < 5; i++ {
		view, err := s.NewSession(ctx, 1, testWelcome)
		if err != nil {
			t.Fatalf("new session %d: %v", i, err)
		}
		conversations = append(conversations, view.ConversationID)
		if _, err := s.Send(ctx, 1, fmt.Sprintf("question %d", i), "", ""); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	// 把最后一个会话也归档进历史
	if _, err := s.NewSession(ctx, 1, testWelcome); err != nil {
		t.Fatalf("final new session: %v", err)
	}

	summaries, err := s.History(ctx, 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(summaries))
	}
	if summaries[0].ConversationID != conversations[4] {
		t.Fatalf("expected newest conversation first, got %s", summaries[0].ConversationID)
	}
	for _, summary := range summaries {
		if summary.ConversationID == conversations[0] || summary.ConversationID == conversations[1] {
			t.Fatalf("expected oldest conversations evicted, found %s", summary.ConversationID)
		}
	}
}

func TestChatHistoryUpsertMovesToFront(t *testing.T) {
	assistant := &fakeAssistant{reply: "ok"}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	first, err := s.Open(ctx, 1, "", testWelcome)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Send(ctx, 1, "one", "", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	second, err := s.NewSession(ctx, 1, testWelcome)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := s.Send(ctx, 1, "two", "", ""); err != nil {
		t.Fatalf("send: %v", err)
	}

	// 回到第一个会话并继续发言，应回到列表最前
	if _, err := s.Open(ctx, 1, first.ConversationID, testWelcome); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := s.Send(ctx, 1, "one again", "", ""); err != nil {
		t.Fatalf("send: %v", err)
	}

	summaries, err := s.History(ctx, 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected two entries, got %d", len(summaries))
	}
	if summaries[0].ConversationID != first.ConversationID {
		t.Fatalf("expected refreshed conversation first, got %s", summaries[0].ConversationID)
	}
	if summaries[1].ConversationID != second.ConversationID {
		t.Fatalf("expected other conversation second, got %s", summaries[1].ConversationID)
	}
}

func TestChatDeleteHistory(t *testing.T) {
	assistant := &fakeAssistant{reply: "ok"}
	s, _ := newTestChatService(assistant, 10)
	ctx := context.Background()

	first, err := s.Open(ctx, 1, "", testWelcome)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Send(ctx, 1, "keep this", "", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := s.NewSession(ctx, 1, testWelcome); err != nil {
		t.Fatalf("new session: %v", err)
	}

	if err := s.DeleteHistory(ctx, 1, first.ConversationID); err != nil {
		t.Fatalf("delete history: %v", err)
	}
	if err := s.DeleteHistory(ctx, 1, first.ConversationID); !errors.Is(err, ErrHistoryNotFound) {
		t.Fatalf("expected ErrHistoryNotFound on second delete, got %v", err)
	}
	summaries, err := s.History(ctx, 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected empty history, got %d", len(summaries))
	}
}
