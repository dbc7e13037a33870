// Package contactform drives a contact form independently of how it is
// rendered: it owns the draft, the per-field errors, the submission
// lifecycle and the auto-hiding result banner.
package contactform

import (
	"context"
	"errors"
	"sync"
	"time"

	"agency-site-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// DefaultBannerDuration is how long a success or error banner stays visible.
const DefaultBannerDuration = 5 * time.Second

// User-facing copy.
const (
	SubmitLabel        = "Send Message"
	SendingLabel       = "Sending…"
	DefaultSuccessText = "Thank you! Your message has been sent. We'll get back to you soon."
	DefaultFailureText = "Something went wrong while sending your message. Please try again later."
	BotCheckFailedText = "We couldn't verify that you're human. Please try again."
)

var (
	// ErrSubmissionInFlight is returned by Submit while a request is pending.
	ErrSubmissionInFlight = errors.New("contactform: submission already in flight")
	// ErrInvalidDraft is returned by Submit when client validation fails.
	ErrInvalidDraft = errors.New("contactform: draft has field errors")
	// ErrClosed is returned once the controller has been closed.
	ErrClosed = errors.New("contactform: controller closed")
)

// State is a step of the submission lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	StateSending
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateSending:
		return "sending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ResultKind tags a Result.
type ResultKind string

const (
	ResultIdle    ResultKind = "idle"
	ResultSuccess ResultKind = "success"
	ResultError   ResultKind = "error"
)

// Result is the outcome of the most recent send attempt, shown as a banner.
type Result struct {
	Kind    ResultKind
	Message string
}

// Visible reports whether a banner should be rendered.
func (r Result) Visible() bool {
	return r.Kind == ResultSuccess || r.Kind == ResultError
}

// Submission is what a Submitter sends over the network.
type Submission struct {
	Draft    Draft
	BotToken string
}

// Submitter performs exactly one network attempt and returns the server's
// success message.
type Submitter interface {
	Submit(ctx context.Context, s Submission) (string, error)
}

// TokenSource yields a bot-mitigation token for a submission.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// MessageError is implemented by Submitter errors that carry a message the
// server meant for the user.
type MessageError interface {
	error
	UserMessage() string
}

// Snapshot is everything a view needs to render the form.
type Snapshot struct {
	Draft          Draft
	Errors         FieldErrors
	State          State
	Result         Result
	ButtonLabel    string
	ButtonDisabled bool
	// MessageLength is advisory; typing past MessageLimit is never blocked.
	MessageLength int
	MessageLimit  int
}

// Controller is safe for concurrent use. The banner timer fires on its own
// goroutine.
type Controller struct {
	mu        sync.Mutex
	submitter Submitter
	tokens    TokenSource
	validate  *validator.Validate
	clock     Clock
	display   time.Duration
	onChange  func(Snapshot)

	draft      Draft
	errors     FieldErrors
	state      State
	result     Result
	touched    map[Field]bool
	timer      Timer
	generation uint64
	closed     bool
}

type Option func(*Controller)

// WithTokenSource fetches a bot-mitigation token before each send.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Controller) { c.tokens = ts }
}

// WithClock replaces the wall clock used for the banner timer.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithBannerDuration overrides DefaultBannerDuration.
func WithBannerDuration(d time.Duration) Option {
	return func(c *Controller) { c.display = d }
}

// WithOnChange registers a callback invoked with a fresh Snapshot after
// every state change.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithValidator shares an existing validator built by validation.New.
func WithValidator(v *validator.Validate) Option {
	return func(c *Controller) { c.validate = v }
}

func New(submitter Submitter, opts ...Option) *Controller {
	c := &Controller{
		submitter: submitter,
		clock:     realClock{},
		display:   DefaultBannerDuration,
		errors:    FieldErrors{},
		touched:   map[Field]bool{},
		result:    Result{Kind: ResultIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.validate == nil {
		c.validate = validation.New()
	}
	return c
}

// SetField records an edit. It clears that field's error and hides any
// visible banner at once, cancelling its timer.
func (c *Controller) SetField(f Field, value string) {
	c.mu.Lock()
	if c.closed || !c.draft.set(f, value) {
		c.mu.Unlock()
		return
	}
	c.touched[f] = true
	delete(c.errors, f)
	if c.result.Visible() {
		c.hideBannerLocked()
	}
	if c.state == StateInvalid || c.state == StateSucceeded || c.state == StateFailed {
		c.state = StateIdle
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Blur validates a field the user has edited when it loses focus.
func (c *Controller) Blur(f Field) {
	c.mu.Lock()
	if c.closed || !c.touched[f] {
		c.mu.Unlock()
		return
	}
	errs := validation.ValidateContactForm(c.validate, c.draft.form())
	if msg, ok := errs[string(f)]; ok {
		c.errors[f] = msg
	} else {
		delete(c.errors, f)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Submit validates the whole draft and, if it is clean, sends it once.
// It returns ErrInvalidDraft, ErrSubmissionInFlight, the submitter's error,
// or nil on success. The outcome is also reflected in the controller state.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == StateSending {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}

	if c.result.Visible() {
		c.hideBannerLocked()
	}
	c.state = StateValidating
	c.errors = fieldErrorsFrom(validation.ValidateContactForm(c.validate, c.draft.form()))
	if len(c.errors) > 0 {
		c.state = StateInvalid
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)
		return ErrInvalidDraft
	}

	c.state = StateSending
	draft := c.draft
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	var token string
	var err error
	if c.tokens != nil {
		token, err = c.tokens.Token(ctx)
		if err != nil {
			c.finish(nil, err, BotCheckFailedText)
			return err
		}
	}

	message, err := c.submitter.Submit(ctx, Submission{Draft: draft, BotToken: token})
	if err != nil {
		c.finish(nil, err, failureText(err))
		return err
	}
	if message == "" {
		message = DefaultSuccessText
	}
	c.finish(&message, nil, "")
	return nil
}

// finish moves Sending to Succeeded or Failed and arms the banner timer.
func (c *Controller) finish(successText *string, err error, failure string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.state = StateFailed
		c.result = Result{Kind: ResultError, Message: failure}
	} else {
		c.state = StateSucceeded
		c.result = Result{Kind: ResultSuccess, Message: *successText}
		c.draft = Draft{}
		c.errors = FieldErrors{}
		c.touched = map[Field]bool{}
	}

	c.generation++
	gen := c.generation
	c.timer = c.clock.AfterFunc(c.display, func() { c.expireBanner(gen) })

	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// expireBanner reverts the result to idle unless a newer banner, an edit or
// Close has superseded the timer that scheduled it.
func (c *Controller) expireBanner(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.result = Result{Kind: ResultIdle}
	if c.state == StateSucceeded || c.state == StateFailed {
		c.state = StateIdle
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) hideBannerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.generation++
	c.result = Result{Kind: ResultIdle}
}

// Close cancels the pending banner timer. Later calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.generation++
	c.closed = true
}

// Snapshot returns the current view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	sending := c.state == StateSending
	label := SubmitLabel
	if sending {
		label = SendingLabel
	}
	return Snapshot{
		Draft:          c.draft,
		Errors:         c.errors.clone(),
		State:          c.state,
		Result:         c.result,
		ButtonLabel:    label,
		ButtonDisabled: sending,
		MessageLength:  len([]rune(c.draft.Message)),
		MessageLimit:   validation.MessageMaxLength,
	}
}

func (c *Controller) notify(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

func failureText(err error) string {
	var msgErr MessageError
	if errors.As(err, &msgErr) && msgErr.UserMessage() != "" {
		return msgErr.UserMessage()
	}
	return DefaultFailureText
}
