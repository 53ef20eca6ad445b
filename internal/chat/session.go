package chat

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nestlink/server/internal/delay"
	"nestlink/server/internal/models"
	"nestlink/server/internal/queue"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotEditing      = errors.New("message is not being edited")
	ErrReplyQueueFull  = errors.New("too many messages waiting for a reply")
	ErrSessionClosed   = errors.New("chat session is closed")
)

const (
	DefaultTypingDelay  = 1500 * time.Millisecond
	DefaultTypingJitter = time.Second
	DefaultQueueSize    = 16
)

type Options struct {
	TypingDelay  time.Duration
	TypingJitter time.Duration
	QueueSize    int
}

type replyRequest struct {
	prompt string
	epoch  uint64
}

// Session is one conversation with the assistant. Replies are produced by a
// single consumer, so they arrive in the order the messages were sent.
type Session struct {
	mu       sync.RWMutex
	messages []models.ChatMessage
	selected []string
	pending  int

	// epoch changes on ClearChat; replies queued under an older epoch are
	// dropped, and epochCtx aborts the one being typed.
	epoch       uint64
	epochCtx    context.Context
	epochCancel context.CancelFunc

	root   context.Context
	stop   context.CancelFunc
	queue  *queue.Queue[replyRequest]
	opts   Options
	rnd    *rand.Rand
	now    func() time.Time
	logger *logrus.Logger
}

func NewSession(opts Options, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	root, stop := context.WithCancel(context.Background())
	epochCtx, epochCancel := context.WithCancel(root)

	s := &Session{
		epochCtx:    epochCtx,
		epochCancel: epochCancel,
		root:        root,
		stop:        stop,
		queue:       queue.New[replyRequest](opts.QueueSize, logger),
		opts:        opts,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
		logger:      logger,
	}
	s.queue.Subscribe(s.reply)
	s.queue.Start()
	return s
}

// SendMessage appends the trimmed text as a user message and schedules the
// assistant's reply. The message is only recorded if the reply could be
// scheduled.
func (s *Session) SendMessage(text string) (models.ChatMessage, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.queue.Push(replyRequest{prompt: text, epoch: s.epoch}); err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			return models.ChatMessage{}, ErrReplyQueueFull
		}
		return models.ChatMessage{}, ErrSessionClosed
	}

	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: s.now(),
	}
	s.messages = append(s.messages, msg)
	s.pending++
	return msg, nil
}

// reply runs on the queue consumer
func (s *Session) reply(req replyRequest) error {
	s.mu.Lock()
	if req.epoch != s.epoch {
		s.mu.Unlock()
		return nil
	}
	ctx := s.epochCtx
	wait := s.opts.TypingDelay
	if s.opts.TypingJitter > 0 {
		wait += time.Duration(s.rnd.Int63n(int64(s.opts.TypingJitter)))
	}
	s.mu.Unlock()

	if err := delay.Wait(ctx, wait); err != nil {
		// cleared or closed while typing
		return nil
	}

	answer := Classify(req.prompt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.epoch != s.epoch {
		return nil
	}
	s.messages = append(s.messages, models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleAssistant,
		Content:   answer,
		Timestamp: s.now(),
	})
	s.pending--

	s.logger.WithFields(logrus.Fields{
		"topic":   TopicOf(req.prompt),
		"pending": s.pending,
	}).Debug("Assistant replied")
	return nil
}

// IsTyping reports whether any reply is still pending.
func (s *Session) IsTyping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

// Messages returns a copy of the conversation in order.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ChatMessage, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.Clone()
	}
	return out
}

// StartEditing puts id into edit mode with its content staged. Every other
// message leaves edit mode.
func (s *Session) StartEditing(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return ErrMessageNotFound
	}
	for i := range s.messages {
		m := &s.messages[i]
		if m.ID == id {
			staged := m.Content
			m.IsEditing = true
			m.EditedContent = &staged
		} else {
			m.IsEditing = false
			m.EditedContent = nil
		}
	}
	return nil
}

// StageEdit replaces the staged text of a message in edit mode.
func (s *Session) StageEdit(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.editing(id)
	if err != nil {
		return err
	}
	m.EditedContent = &text
	return nil
}

// CommitEdit makes the staged text the message content and leaves edit
// mode. Blank staged text is refused.
func (s *Session) CommitEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.editing(id)
	if err != nil {
		return err
	}
	staged := ""
	if m.EditedContent != nil {
		staged = strings.TrimSpace(*m.EditedContent)
	}
	if staged == "" {
		return ErrEmptyMessage
	}
	m.Content = staged
	m.IsEditing = false
	m.EditedContent = nil
	return nil
}

// CancelEditing leaves edit mode and discards the staged text.
func (s *Session) CancelEditing(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrMessageNotFound
	}
	s.messages[i].IsEditing = false
	s.messages[i].EditedContent = nil
	return nil
}

// EditMessage replaces the content of id directly and leaves edit mode.
func (s *Session) EditMessage(id, text string) error {
	content := strings.TrimSpace(text)
	if content == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrMessageNotFound
	}
	s.messages[i].Content = content
	s.messages[i].IsEditing = false
	s.messages[i].EditedContent = nil
	return nil
}

// DeleteMessage removes id from the conversation and the selection. It
// reports whether a message was removed.
func (s *Session) DeleteMessage(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = without(s.selected, id)
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.messages = append(s.messages[:i:i], s.messages[i+1:]...)
	return true
}

// ClearChat empties the conversation and the selection. Replies still
// pending are dropped.
func (s *Session) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	s.selected = nil
	s.pending = 0
	s.epoch++
	s.epochCancel()
	s.epochCtx, s.epochCancel = context.WithCancel(s.root)
}

// ToggleSelection selects id, or unselects it when already selected. It
// returns whether id is selected afterwards.
func (s *Session) ToggleSelection(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sel := range s.selected {
		if sel == id {
			s.selected = without(s.selected, id)
			return false, nil
		}
	}
	if s.indexOf(id) < 0 {
		return false, ErrMessageNotFound
	}
	s.selected = append(s.selected, id)
	return true, nil
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// SelectedMessages returns the selected ids in selection order.
func (s *Session) SelectedMessages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.selected...)
}

// DeleteSelectedMessages removes every selected message and clears the
// selection. It returns the number of messages removed.
func (s *Session) DeleteSelectedMessages() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(s.selected))
	for _, id := range s.selected {
		drop[id] = struct{}{}
	}

	kept := s.messages[:0:0]
	for _, m := range s.messages {
		if _, ok := drop[m.ID]; !ok {
			kept = append(kept, m)
		}
	}
	removed := len(s.messages) - len(kept)
	s.messages = kept
	s.selected = nil
	return removed
}

// Close stops the reply consumer. Pending replies are abandoned.
func (s *Session) Close() error {
	s.stop()
	return s.queue.Close()
}

func (s *Session) indexOf(id string) int {
	for i, m := range s.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) editing(id string) (*models.ChatMessage, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrMessageNotFound
	}
	if !s.messages[i].IsEditing {
		return nil, ErrNotEditing
	}
	return &s.messages[i], nil
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
