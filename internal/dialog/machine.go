package dialog

import (
	"context"
	"log/slog"
	"runtime/debug"
)

const defaultPageSize = 5

// transition is a row key of the state table.
type transition struct {
	step Step
	kind Kind
}

// turn carries one event through its handler.
type turn struct {
	ev Event
	in input
	s  *session
	// conv is the conversation this turn acts on. Errors clear it only while
	// it is still the session's current conversation.
	conv *Conversation
}

type handler func(ctx context.Context, t *turn) error

type Machine struct {
	transport Transport
	users     Users
	ledgers   Ledgers
	parser    Parser
	sync      Synchronizer
	tokens    Tokens

	pageSize int
	currency string

	sessions *sessions
	global   map[Kind]handler
	table    map[transition]handler
}

type Option func(*Machine)

func WithPageSize(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.pageSize = n
		}
	}
}

func WithCurrency(symbol string) Option {
	return func(m *Machine) {
		if symbol != "" {
			m.currency = symbol
		}
	}
}

// WithTokens enables the /token command.
func WithTokens(tokens Tokens) Option {
	return func(m *Machine) { m.tokens = tokens }
}

func New(transport Transport, users Users, ledgers Ledgers, parser Parser, sync Synchronizer, opts ...Option) *Machine {
	m := &Machine{
		transport: transport,
		users:     users,
		ledgers:   ledgers,
		parser:    parser,
		sync:      sync,
		pageSize:  defaultPageSize,
		currency:  "₹",
		sessions:  newSessions(),
	}

	for _, opt := range opts {
		opt(m)
	}

	// Valid in every state, including mid-flow.
	m.global = map[Kind]handler{
		KindStart:        m.start,
		KindHelp:         m.help,
		KindStatus:       m.status,
		KindCancel:       m.cancel,
		KindCreateLedger: m.beginLedger,
		KindCreateEntry:  m.beginEntry,
		KindToken:        m.issueToken,
	}

	m.table = map[transition]handler{
		{AwaitingLedgerName, KindText}:                     m.receiveLedgerName,
		{AwaitingLedgerConfirmation, KindConfirmLedgerYes}: m.confirmLedger,
		{AwaitingLedgerConfirmation, KindConfirmLedgerNo}:  m.declineLedger,
		{SelectingLedger, KindLedgerPage}:                  m.turnPage,
		{SelectingLedger, KindSelectLedger}:                m.selectLedger,
		{AwaitingEntryText, KindText}:                      m.receiveEntryText,
		{AwaitingEntryText, KindRetryEntry}:                m.retryEntry,
		{AwaitingEntryConfirmation, KindConfirmEntryYes}:   m.confirmEntry,
		{AwaitingEntryConfirmation, KindConfirmEntryNo}:    m.declineEntry,
		{AwaitingEntryConfirmation, KindEditEntry}:         m.editEntry,
	}

	return m
}

// Handle processes one event. Events of the same user are handled one at a
// time; events of different users run concurrently. Handle never panics.
func (m *Machine) Handle(ctx context.Context, ev Event) {
	m.Admit(ev)(ctx)
}

// Admit queues ev behind the user's earlier events without blocking and
// returns the function that handles it. Callers that fan events out to
// goroutines call Admit in arrival order so each user's events still run in
// that order. The returned function must be called exactly once.
func (m *Machine) Admit(ev Event) func(ctx context.Context) {
	tk := m.sessions.reserve(ev.UserID)

	return func(ctx context.Context) {
		m.run(ctx, ev, m.sessions.wait(tk))
	}
}

func (m *Machine) run(ctx context.Context, ev Event, s *session) {
	t := &turn{ev: ev, in: classify(ev), s: s, conv: s.conv}
	defer m.sessions.release(ev.UserID, s)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("dialog handler panicked",
				"user_id", ev.UserID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			m.abort(ctx, t)
		}
	}()

	if err := m.dispatch(ctx, t); err != nil {
		slog.Error("handling dialog event", "user_id", ev.UserID, "kind", t.in.Kind, "error", err)
		m.abort(ctx, t)
	}
}

// Step reports the current step of user's conversation.
func (m *Machine) Step(user int64) Step {
	s := m.sessions.acquire(user)
	defer m.sessions.release(user, s)

	if s.conv == nil {
		return Idle
	}

	return s.conv.Step
}

func (m *Machine) dispatch(ctx context.Context, t *turn) error {
	if h, ok := m.global[t.in.Kind]; ok {
		return h(ctx, t)
	}

	conv := t.s.conv
	if conv == nil {
		if t.in.Kind.isButton() {
			return m.reply(ctx, t, msgNoActiveOp)
		}

		return m.reply(ctx, t, msgUnknownCommand)
	}

	if conv.busy {
		slog.Debug("event ignored while busy", "user_id", t.ev.UserID, "step", conv.Step.String(), "kind", t.in.Kind)
		return nil
	}

	h, ok := m.table[transition{conv.Step, t.in.Kind}]
	if !ok {
		slog.Debug("event ignored", "user_id", t.ev.UserID, "step", conv.Step.String(), "kind", t.in.Kind)
		return nil
	}

	return h(ctx, t)
}

// abort returns the user to Idle and reports a generic failure.
func (m *Machine) abort(ctx context.Context, t *turn) {
	if t.s.conv != nil && t.s.conv == t.conv {
		t.s.conv = nil
	}

	m.notify(ctx, t.ev.Chat, msgSystemError)
}

func (m *Machine) reply(ctx context.Context, t *turn, text string) error {
	_, err := m.transport.Send(ctx, t.ev.Chat, Message{Text: text})
	return err
}

func (m *Machine) send(ctx context.Context, t *turn, msg Message) (MessageRef, error) {
	return m.transport.Send(ctx, t.ev.Chat, msg)
}

// replace rewrites the message whose button triggered t, or sends msg when
// there is none or it can no longer be edited.
func (m *Machine) replace(ctx context.Context, t *turn, msg Message) error {
	if t.ev.MessageID != 0 {
		err := m.transport.Edit(ctx, MessageRef{Chat: t.ev.Chat, ID: t.ev.MessageID}, msg)
		if err == nil {
			return nil
		}

		slog.Warn("editing message, sending instead", "chat", t.ev.Chat, "message_id", t.ev.MessageID, "error", err)
	}

	_, err := m.transport.Send(ctx, t.ev.Chat, msg)

	return err
}

// notify sends text and only logs a failure.
func (m *Machine) notify(ctx context.Context, chat int64, text string) {
	if _, err := m.transport.Send(ctx, chat, Message{Text: text}); err != nil {
		slog.Error("sending message", "chat", chat, "error", err)
	}
}
