// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/advith-tui/internal/api"
	"github.com/jeranaias/advith-tui/internal/logging"
	"github.com/jeranaias/advith-tui/internal/model"
	"github.com/jeranaias/advith-tui/internal/util"
)

var (
	// ErrNotAuthenticated is returned when no signed-in email is available.
	ErrNotAuthenticated = errors.New("please sign in to start a conversation")

	// ErrNoFeedbackTarget is returned when there is no reply to rate.
	ErrNoFeedbackTarget = errors.New("no response to rate")

	// ErrInvalidRating is returned for ratings outside 1 to 5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrNoActiveConversation is returned when an operation needs an open
	// conversation.
	ErrNoActiveConversation = errors.New("no conversation is open")

	// ErrNotPersisted is returned when the server does not know the
	// conversation yet.
	ErrNotPersisted = errors.New("send a message before emailing this conversation")

	// ErrConversationNotFound is returned for an unknown LocalID.
	ErrConversationNotFound = errors.New("conversation not found")
)

// FallbackErrorMessage is shown when a failed send carries no description.
const FallbackErrorMessage = "Sorry, something went wrong. Please try again."

// =============================================================================
// STATES
// =============================================================================

// SendState is the position of one conversation in its send cycle.
type SendState int

const (
	StateIdle SendState = iota
	StateSending
	StateAwaitingReply
	StateReplied
	StateFailed
)

func (s SendState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateAwaitingReply:
		return "awaiting_reply"
	case StateReplied:
		return "replied"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InFlight reports whether a request is outstanding.
func (s SendState) InFlight() bool {
	return s == StateSending || s == StateAwaitingReply
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// ChatAPI is the part of the API client the machine uses.
type ChatAPI interface {
	SendMessage(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	GetConversations(ctx context.Context, email string) ([]api.HistoryConversation, error)
	DeleteConversation(ctx context.Context, id api.ID) error
	SubmitFeedback(ctx context.Context, messageID api.ID, req api.FeedbackRequest) error
	EmailTranscript(ctx context.Context, id api.ID) (*api.StatusResponse, error)
}

// Identity supplies the signed-in email. auth.Session implements it.
type Identity interface {
	Email() string
}

// Config configures a Machine.
type Config struct {
	// FeedbackDelay is how long after a reply the rating prompt appears.
	FeedbackDelay time.Duration

	// Greeting seeds new conversations.
	Greeting string

	// Clock defaults to the wall clock.
	Clock Clock

	// OnFeedback is called, outside the lock, when the prompt is revealed.
	OnFeedback func(Feedback)
}

// DefaultConfig returns the default machine configuration.
func DefaultConfig() Config {
	return Config{
		FeedbackDelay: 20 * time.Second,
		Greeting:      model.Greeting,
	}
}

// =============================================================================
// FEEDBACK / PENDING / OUTCOME
// =============================================================================

// Feedback is the rating prompt state.
type Feedback struct {
	Visible bool

	// TargetID is the server id of the most recent reply; empty when there
	// is nothing to rate.
	TargetID string

	// ConversationID is the LocalID the target belongs to.
	ConversationID string

	Rating     int
	Suggestion string
}

// HasTarget reports whether a reply is available to rate.
func (f Feedback) HasTarget() bool {
	return f.TargetID != ""
}

// Pending is the ticket for one send cycle.
type Pending struct {
	ConversationID string
	MessageID      string
	Request        api.ChatRequest
}

// Outcome describes a completed send cycle.
type Outcome struct {
	State SendState

	// Reply is the appended system message; nil when the cycle was dropped.
	Reply *model.Message

	// FeedbackArmed is set when the feedback timer was started.
	FeedbackArmed bool

	Err error
}

// Snapshot is a copy of the machine state, safe to read without locking.
type Snapshot struct {
	Conversations []*model.Conversation
	Active        *model.Conversation
	State         SendState
	Typing        bool
	PendingInput  string
	Feedback      Feedback
}

// =============================================================================
// MACHINE
// =============================================================================

// Machine is the conversation session state machine.
type Machine struct {
	client   ChatAPI
	identity Identity
	clock    Clock
	delay    time.Duration
	greeting string
	notify   func(Feedback)
	log      *zap.Logger

	mu            sync.Mutex
	conversations []*model.Conversation
	activeID      string
	input         string
	states        map[string]SendState
	feedback      Feedback

	timer     Timer
	timerConv string
	timerGen  uint64
}

// NewMachine creates a machine with an empty conversation list.
func NewMachine(client ChatAPI, identity Identity, cfg Config) *Machine {
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.Greeting == "" {
		cfg.Greeting = model.Greeting
	}
	if cfg.FeedbackDelay < 0 {
		cfg.FeedbackDelay = 0
	}
	return &Machine{
		client:   client,
		identity: identity,
		clock:    cfg.Clock,
		delay:    cfg.FeedbackDelay,
		greeting: cfg.Greeting,
		notify:   cfg.OnFeedback,
		log:      logging.Named("session"),
		states:   make(map[string]SendState),
	}
}

// SetFeedbackListener replaces the OnFeedback callback.
func (m *Machine) SetFeedbackListener(fn func(Feedback)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = fn
}

func (m *Machine) email() string {
	if m.identity == nil {
		return ""
	}
	return m.identity.Email()
}

func (m *Machine) find(localID string) *model.Conversation {
	for _, c := range m.conversations {
		if c.LocalID == localID {
			return c
		}
	}
	return nil
}

func (m *Machine) active() *model.Conversation {
	if m.activeID == "" {
		return nil
	}
	return m.find(m.activeID)
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// StartNewConversation creates a conversation seeded with the greeting and
// makes it active.
func (m *Machine) StartNewConversation() (*model.Conversation, error) {
	if m.email() == "" {
		return nil, ErrNotAuthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	conv := model.NewConversation(model.DefaultTitle)
	greeting := model.NewSystemMessage(m.greeting)
	greeting.Timestamp = m.clock.Now()
	conv.AddMessage(greeting)

	m.conversations = append([]*model.Conversation{conv}, m.conversations...)
	m.activate(conv.LocalID)
	return conv.Clone(), nil
}

// SelectConversation makes the conversation with localID active.
func (m *Machine) SelectConversation(localID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(localID) == nil {
		return ErrConversationNotFound
	}
	m.activate(localID)
	return nil
}

// ShowList deactivates the current conversation. A pending feedback reveal
// for it will not show.
func (m *Machine) ShowList() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activate("")
}

func (m *Machine) activate(localID string) {
	if m.activeID == localID {
		return
	}
	m.activeID = localID
	m.input = ""
	m.feedback.Visible = false
}

// SetInput records the draft message text.
func (m *Machine) SetInput(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = text
}

// =============================================================================
// SEND CYCLE
// =============================================================================

// BeginSend performs the optimistic half of a send: it appends the user
// message as pending and marks the conversation in flight. It returns nil
// when text is blank, no conversation is active, nobody is signed in, or the
// active conversation already has a send in flight.
func (m *Machine) BeginSend(text string) *Pending {
	text = util.Normalize(text)
	if text == "" {
		return nil
	}
	email := m.email()
	if email == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	conv := m.active()
	if conv == nil {
		return nil
	}
	if m.states[conv.LocalID].InFlight() {
		m.log.Debug("send ignored, reply pending", zap.String("conversation", conv.LocalID))
		return nil
	}

	m.states[conv.LocalID] = StateSending

	msg := model.NewUserMessage(text)
	msg.Timestamp = m.clock.Now()
	conv.AddMessage(msg)
	m.input = ""

	if m.timerConv == conv.LocalID {
		m.stopTimer()
	}
	if m.feedback.ConversationID == conv.LocalID {
		m.feedback.Visible = false
	}

	m.states[conv.LocalID] = StateAwaitingReply

	return &Pending{
		ConversationID: conv.LocalID,
		MessageID:      msg.LocalID,
		Request: api.ChatRequest{
			UserQuery: text,
			Email:     email,
			SessionID: api.ID(conv.ID),
		},
	}
}

// CompleteSend applies the result of the request issued for p. The update
// targets p's conversation whether or not it is still active. If the
// conversation was removed meanwhile the result is dropped.
func (m *Machine) CompleteSend(p *Pending, resp *api.ChatResponse, err error) Outcome {
	if p == nil {
		return Outcome{State: StateIdle}
	}
	if err == nil && resp == nil {
		err = api.ErrInvalidResponse
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	conv := m.find(p.ConversationID)
	if conv == nil {
		delete(m.states, p.ConversationID)
		m.log.Debug("dropping reply for removed conversation", zap.String("conversation", p.ConversationID))
		return Outcome{State: StateIdle, Err: err}
	}

	if err != nil {
		conv.SetDelivery(p.MessageID, model.DeliveryFailed)
		reply := model.NewErrorMessage(errorContent(err))
		reply.Timestamp = m.clock.Now()
		conv.AddMessage(reply)
		m.states[conv.LocalID] = StateFailed
		if m.feedback.ConversationID == conv.LocalID {
			m.clearFeedback()
		}
		m.log.Info("send failed", zap.String("conversation", conv.LocalID), zap.Error(err))
		return Outcome{State: StateFailed, Reply: reply.Clone(), Err: err}
	}

	conv.SetDelivery(p.MessageID, model.DeliveryConfirmed)
	if conv.ID == "" && resp.SessionID != "" {
		conv.ID = resp.SessionID.String()
	}

	reply := model.NewSystemMessage(resp.Response)
	reply.ServerID = resp.MessageID.String()
	reply.Timestamp = m.clock.Now()
	conv.AddMessage(reply)
	m.states[conv.LocalID] = StateReplied

	armed := false
	if m.feedback.ConversationID == conv.LocalID {
		m.clearFeedback()
	}
	if reply.ServerID != "" {
		m.feedback = Feedback{TargetID: reply.ServerID, ConversationID: conv.LocalID}
		if m.activeID == conv.LocalID {
			m.armTimer(conv.LocalID)
			armed = true
		}
	}

	return Outcome{State: StateReplied, Reply: reply.Clone(), FeedbackArmed: armed}
}

// SendMessage runs a complete send cycle synchronously. A blank message or
// one sent while a reply is pending is a no-op reporting StateIdle.
func (m *Machine) SendMessage(ctx context.Context, text string) Outcome {
	p := m.BeginSend(text)
	if p == nil {
		return Outcome{State: StateIdle}
	}
	defer logging.Duration("SendMessage", zap.String("conversation", p.ConversationID))()

	resp, err := m.client.SendMessage(ctx, p.Request)
	return m.CompleteSend(p, resp, err)
}

// Execute issues the request for a ticket from BeginSend. It does not touch
// machine state and may run on any goroutine.
func (m *Machine) Execute(ctx context.Context, p *Pending) (*api.ChatResponse, error) {
	return m.client.SendMessage(ctx, p.Request)
}

func errorContent(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return FallbackErrorMessage
	}
	return msg
}

// =============================================================================
// FEEDBACK
// =============================================================================

func (m *Machine) armTimer(localID string) {
	m.stopTimer()
	m.timerGen++
	gen := m.timerGen
	m.timerConv = localID
	m.timer = m.clock.AfterFunc(m.delay, func() { m.revealFeedback(localID, gen) })
}

func (m *Machine) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = nil
	m.timerConv = ""
	m.timerGen++
}

func (m *Machine) revealFeedback(localID string, gen uint64) {
	m.mu.Lock()
	if gen != m.timerGen || m.activeID != localID || m.states[localID].InFlight() ||
		m.feedback.ConversationID != localID || !m.feedback.HasTarget() {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.timerConv = ""
	m.feedback.Visible = true
	fb := m.feedback
	notify := m.notify
	m.mu.Unlock()

	if notify != nil {
		notify(fb)
	}
}

// ShowFeedback reveals the prompt immediately when the open conversation's
// latest reply is a rating target.
func (m *Machine) ShowFeedback() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.feedback.HasTarget() || m.activeID == "" || m.feedback.ConversationID != m.activeID {
		return false
	}
	m.stopTimer()
	m.feedback.Visible = true
	return true
}

// SetFeedbackDraft records the rating and suggestion being edited.
func (m *Machine) SetFeedbackDraft(rating int, suggestion string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback.Rating = rating
	m.feedback.Suggestion = suggestion
}

// SubmitFeedback rates the most recent reply. Without a target, or with a
// rating outside 1 to 5, it fails without calling the server.
func (m *Machine) SubmitFeedback(ctx context.Context, rating int, suggestion string) error {
	m.mu.Lock()
	target := m.feedback.TargetID
	m.mu.Unlock()

	if target == "" {
		return ErrNoFeedbackTarget
	}
	if rating < api.MinRating || rating > api.MaxRating {
		return ErrInvalidRating
	}

	err := m.client.SubmitFeedback(ctx, api.ID(target), api.FeedbackRequest{
		Rating:     rating,
		Suggestion: strings.TrimSpace(suggestion),
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.feedback.TargetID == target {
		m.clearFeedback()
	}
	m.mu.Unlock()
	return nil
}

// CancelFeedback dismisses the prompt and forgets the target.
func (m *Machine) CancelFeedback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearFeedback()
}

func (m *Machine) clearFeedback() {
	m.stopTimer()
	m.feedback = Feedback{}
}

// =============================================================================
// SERVER-BACKED LIST OPERATIONS
// =============================================================================

// LoadConversations replaces the list with the server's history for email.
// The first conversation becomes active. On failure the list is cleared.
func (m *Machine) LoadConversations(ctx context.Context, email string) error {
	defer logging.Duration("LoadConversations")()

	history, err := m.client.GetConversations(ctx, email)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearFeedback()
	m.states = make(map[string]SendState)
	m.input = ""

	if err != nil {
		m.conversations = nil
		m.activeID = ""
		return err
	}

	convs := make([]*model.Conversation, 0, len(history))
	for _, h := range history {
		convs = append(convs, FromHistory(h))
	}
	m.conversations = convs
	m.activeID = ""
	if len(convs) > 0 {
		m.activeID = convs[0].LocalID
	}
	return nil
}

// DeleteConversation deletes the conversation with localID on the server and
// removes it locally. A conversation the server never saw is removed
// without a request. On failure the list is unchanged.
func (m *Machine) DeleteConversation(ctx context.Context, localID string) error {
	m.mu.Lock()
	conv := m.find(localID)
	var serverID string
	persisted := false
	if conv != nil {
		serverID, persisted = conv.ID, conv.IsPersisted()
	}
	m.mu.Unlock()

	if conv == nil {
		return ErrConversationNotFound
	}
	if persisted {
		if err := m.client.DeleteConversation(ctx, api.ID(serverID)); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.conversations {
		if c.LocalID == localID {
			m.conversations = append(m.conversations[:i:i], m.conversations[i+1:]...)
			break
		}
	}
	delete(m.states, localID)
	if m.activeID == localID {
		m.activate("")
	}
	if m.feedback.ConversationID == localID {
		m.clearFeedback()
	}
	return nil
}

// EmailTranscript emails the active conversation to the user.
func (m *Machine) EmailTranscript(ctx context.Context) (*api.StatusResponse, error) {
	m.mu.Lock()
	conv := m.active()
	var localID, serverID string
	persisted := false
	if conv != nil {
		localID, serverID, persisted = conv.LocalID, conv.ID, conv.IsPersisted()
	}
	m.mu.Unlock()

	if conv == nil {
		return nil, ErrNoActiveConversation
	}
	if !persisted {
		return nil, ErrNotPersisted
	}

	status, err := m.client.EmailTranscript(ctx, api.ID(serverID))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if c := m.find(localID); c != nil {
		c.EmailSent = true
	}
	m.mu.Unlock()
	return status, nil
}

// Reset forgets every conversation, typically on logout.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearFeedback()
	m.conversations = nil
	m.activeID = ""
	m.input = ""
	m.states = make(map[string]SendState)
}

// SetFeedbackDelay changes the delay for timers armed from now on.
func (m *Machine) SetFeedbackDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	m.delay = d
	m.mu.Unlock()
}

// =============================================================================
// READ ACCESS
// =============================================================================

// Snapshot returns a deep copy of the state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Conversations: make([]*model.Conversation, 0, len(m.conversations)),
		PendingInput:  m.input,
		Feedback:      m.feedback,
	}
	for _, c := range m.conversations {
		clone := c.Clone()
		snap.Conversations = append(snap.Conversations, clone)
		if c.LocalID == m.activeID {
			snap.Active = clone
		}
	}
	if snap.Active != nil {
		snap.State = m.states[snap.Active.LocalID]
		snap.Typing = snap.State.InFlight()
	}
	return snap
}

// Active returns a copy of the active conversation, or nil.
func (m *Machine) Active() *model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active().Clone()
}

// State returns the send state of the conversation with localID.
func (m *Machine) State(localID string) SendState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[localID]
}

// Feedback returns the prompt state.
func (m *Machine) Feedback() Feedback {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.feedback
}

// Len returns the number of conversations.
func (m *Machine) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conversations)
}
