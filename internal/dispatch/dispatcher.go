package dispatch

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/optchat/internal/conversation"
	apperrors "github.com/diogo/optchat/internal/errors"
	"github.com/diogo/optchat/internal/models"
)

// DefaultDelay is the simulated response latency
const DefaultDelay = 1000 * time.Millisecond

// State is the dispatcher's exchange state
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateAwaitingResponse:
		return "awaiting_response"
	default:
		return "idle"
	}
}

// Policy decides what happens to a submission made while a response is pending
type Policy string

const (
	// PolicyReject refuses the submission with ErrBusy
	PolicyReject Policy = "reject"
	// PolicyQueue holds the submission and starts it once the pending exchange resolves
	PolicyQueue Policy = "queue"
)

// ParsePolicy converts a string into a Policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicyQueue:
		return PolicyQueue, nil
	default:
		return "", apperrors.NewConfigError("overlap_policy", fmt.Sprintf("unknown policy %q", s))
	}
}

// AvailablePolicies lists the accepted policy names
func AvailablePolicies() []string {
	return []string{string(PolicyReject), string(PolicyQueue)}
}

// Ticket identifies a pending exchange. The holder schedules Resolve(ID)
// after Delay.
type Ticket struct {
	ID      uint64
	Session string
	Delay   time.Duration
}

// IsZero reports whether the ticket is empty (nothing to schedule)
func (t Ticket) IsZero() bool {
	return t.ID == 0
}

type submission struct {
	content  string
	response Response
}

// Dispatcher runs the Idle -> AwaitingResponse -> Idle exchange over a
// conversation store
type Dispatcher struct {
	mu sync.Mutex

	store   *conversation.Store
	table   *Table
	delay   time.Duration
	policy  Policy
	session string
	logger  *slog.Logger

	lastID  uint64
	pending *Ticket
	reply   Response
	queue   []submission
	closed  bool
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithDelay sets the simulated response latency
func WithDelay(d time.Duration) Option {
	return func(dp *Dispatcher) {
		if d >= 0 {
			dp.delay = d
		}
	}
}

// WithPolicy sets the overlap policy
func WithPolicy(p Policy) Option {
	return func(dp *Dispatcher) {
		dp.policy = p
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(dp *Dispatcher) {
		if l != nil {
			dp.logger = l
		}
	}
}

// New creates a dispatcher over store. A nil table means DefaultTable.
func New(store *conversation.Store, table *Table, opts ...Option) *Dispatcher {
	if table == nil {
		table = DefaultTable()
	}
	d := &Dispatcher{
		store:   store,
		table:   table,
		delay:   DefaultDelay,
		policy:  PolicyReject,
		session: uuid.NewString(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("session", d.session)
	return d
}

// NewConversation creates a store seeded with the table's greeting
func NewConversation(table *Table) *conversation.Store {
	if table == nil {
		table = DefaultTable()
	}
	return conversation.New(table.Greeting.Message())
}

// SubmitOption records a clicked option and starts an exchange
func (d *Dispatcher) SubmitOption(option string) (Ticket, error) {
	return d.submit("option", submission{content: option, response: d.table.Lookup(option)})
}

// SubmitText records free-text input and starts an exchange. Empty or
// whitespace-only text is ignored: the zero ticket is returned and nothing
// changes.
func (d *Dispatcher) SubmitText(text string) (Ticket, error) {
	if strings.TrimSpace(text) == "" {
		return Ticket{}, nil
	}
	return d.submit("text", submission{content: text, response: d.table.ForText(text)})
}

func (d *Dispatcher) submit(kind string, sub submission) (Ticket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return Ticket{}, apperrors.ErrClosed
	}

	if d.pending != nil {
		switch d.policy {
		case PolicyQueue:
			d.queue = append(d.queue, sub)
			d.logger.Debug("submission queued", "kind", kind, "queued", len(d.queue))
			return Ticket{}, nil
		default:
			d.logger.Info("submission rejected while awaiting response", "kind", kind, "pending", d.pending.ID)
			return Ticket{}, apperrors.ErrBusy
		}
	}

	t := d.start(sub)
	d.logger.Debug("exchange started", "kind", kind, "ticket", t.ID, "delay", t.Delay)
	return t, nil
}

// start appends the user entry and the placeholder. Caller holds d.mu.
func (d *Dispatcher) start(sub submission) Ticket {
	d.store.Append(models.NewUserMessage(sub.content))
	d.store.Append(models.NewPlaceholderMessage(d.table.Placeholder))

	d.lastID++
	t := Ticket{ID: d.lastID, Session: d.session, Delay: d.delay}
	d.pending = &t
	d.reply = sub.response
	return t
}

// Resolve replaces the placeholder with the computed response when id is the
// pending ticket. Stale or cancelled tickets are ignored and ok is false.
// Under PolicyQueue the next queued submission starts immediately and its
// ticket is returned as next.
func (d *Dispatcher) Resolve(id uint64) (next Ticket, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.pending == nil || d.pending.ID != id {
		d.logger.Debug("ignoring stale ticket", "ticket", id)
		return Ticket{}, false
	}

	d.store.ReplaceLast(d.reply.Message())
	d.pending = nil
	d.reply = Response{}
	d.logger.Debug("exchange resolved", "ticket", id)

	if len(d.queue) > 0 {
		sub := d.queue[0]
		d.queue = d.queue[1:]
		next = d.start(sub)
		d.logger.Debug("queued exchange started", "ticket", next.ID, "queued", len(d.queue))
	}
	return next, true
}

// Close cancels the pending exchange and drops queued submissions. Later
// Resolve calls are no-ops and later submissions fail with ErrClosed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if d.pending != nil {
		d.logger.Info("cancelling pending response", "ticket", d.pending.ID, "dropped", len(d.queue))
	}
	d.closed = true
	d.pending = nil
	d.queue = nil
}

// State returns the current exchange state
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		return StateAwaitingResponse
	}
	return StateIdle
}

// Pending returns the pending ticket, if any
func (d *Dispatcher) Pending() (Ticket, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return Ticket{}, false
	}
	return *d.pending, true
}

// Queued returns the number of submissions waiting under PolicyQueue
func (d *Dispatcher) Queued() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Settled reports whether nothing is pending or queued, or the dispatcher is closed
func (d *Dispatcher) Settled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed || (d.pending == nil && len(d.queue) == 0)
}

// Closed reports whether Close was called
func (d *Dispatcher) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Session returns the dispatcher's session token
func (d *Dispatcher) Session() string {
	return d.session
}

// Policy returns the overlap policy
func (d *Dispatcher) Policy() Policy {
	return d.policy
}

// Delay returns the simulated response latency
func (d *Dispatcher) Delay() time.Duration {
	return d.delay
}

// Table returns the response table
func (d *Dispatcher) Table() *Table {
	return d.table
}

// Store returns the conversation store
func (d *Dispatcher) Store() *conversation.Store {
	return d.store
}

// Messages returns a snapshot of the conversation
func (d *Dispatcher) Messages() []models.Message {
	return d.store.Messages()
}
