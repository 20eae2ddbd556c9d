package service

import (
	"sync"
	"time"
)

// TypingView 逐字输出进度视图
type TypingView struct {
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
	Done      bool   `json:"done"`
}

// revealState 单条消息的逐字输出状态
type revealState struct {
	messageID string
	runes     []rune
	shown     int
	done      bool
	stop      chan struct{}
}

// revealer 管理每个用户的逐字输出。同一用户开始新的输出会先把
// 上一条立即补全。取消或补全后，完整文本总是可见。
type revealer struct {
	mu       sync.Mutex
	interval time.Duration
	states   map[uint]*revealState
}

func newRevealer(interval time.Duration) *revealer {
	if interval <= 0 {
		interval = 18 * time.Millisecond
	}
	return &revealer{
		interval: interval,
		states:   make(map[uint]*revealState),
	}
}

// Start 开始逐字输出一条消息
func (r *revealer) Start(userID uint, messageID, text string) {
	r.mu.Lock()
	if prev, ok := r.states[userID]; ok {
		r.finishLocked(prev)
	}
	state := &revealState{
		messageID: messageID,
		runes:     []rune(text),
		stop:      make(chan struct{}),
	}
	if len(state.runes) == 0 {
		state.done = true
	}
	r.states[userID] = state
	r.mu.Unlock()

	if state.done {
		return
	}
	go r.run(state)
}

func (r *revealer) run(state *revealState) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-state.stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			if state.done {
				r.mu.Unlock()
				return
			}
			state.shown++
			if state.shown >= len(state.runes) {
				r.finishLocked(state)
				r.mu.Unlock()
				return
			}
			r.mu.Unlock()
		}
	}
}

// View 获取用户当前输出进度
func (r *revealer) View(userID uint) (TypingView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		return TypingView{}, false
	}
	shown := state.shown
	if state.done {
		shown = len(state.runes)
	}
	return TypingView{
		MessageID: state.messageID,
		Text:      string(state.runes[:shown]),
		Done:      state.done,
	}, true
}

// Cancel 取消输出并立即补全全文，返回是否有进行中的输出
func (r *revealer) Cancel(userID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok || state.done {
		return false
	}
	r.finishLocked(state)
	return true
}

// Reset 清除用户的输出状态（会话切换时调用）
func (r *revealer) Reset(userID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.states[userID]; ok {
		r.finishLocked(state)
		delete(r.states, userID)
	}
}

func (r *revealer) finishLocked(state *revealState) {
	if !state.done {
		state.done = true
		state.shown = len(state.runes)
		close(state.stop)
	}
}
