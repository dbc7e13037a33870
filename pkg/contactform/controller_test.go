package contactform_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"agency-site-backend/pkg/contactform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, s contactform.Submission) (string, error) {
	args := m.Called(ctx, s)
	return args.String(0), args.Error(1)
}

type MockTokenSource struct {
	mock.Mock
}

func (m *MockTokenSource) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// manualClock fires timers only when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) contactform.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type submitError struct {
	msg string
}

func (e *submitError) Error() string       { return "server: " + e.msg }
func (e *submitError) UserMessage() string { return e.msg }

func fillValid(c *contactform.Controller) {
	c.SetField(contactform.FieldName, "Jo")
	c.SetField(contactform.FieldEmail, "a@b.co")
	c.SetField(contactform.FieldSubject, "Hello there")
	c.SetField(contactform.FieldMessage, "1234567890")
}

func TestControllerSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Should send a valid draft once and clear the form on success", func(t *testing.T) {
		submitter := new(MockSubmitter)
		clock := &manualClock{}
		c := contactform.New(submitter, contactform.WithClock(clock))
		fillValid(c)

		submitter.On("Submit", ctx, contactform.Submission{Draft: contactform.Draft{
			Name: "Jo", Email: "a@b.co", Subject: "Hello there", Message: "1234567890",
		}}).Return("Email sent successfully", nil).Once()

		require.NoError(t, c.Submit(ctx))

		snap := c.Snapshot()
		assert.Equal(t, contactform.StateSucceeded, snap.State)
		assert.Equal(t, contactform.Draft{}, snap.Draft)
		assert.Empty(t, snap.Errors)
		assert.Equal(t, contactform.Result{Kind: contactform.ResultSuccess, Message: "Email sent successfully"}, snap.Result)
		assert.False(t, snap.ButtonDisabled)
		submitter.AssertExpectations(t)
	})

	t.Run("Should block an invalid draft with every field error and no network call", func(t *testing.T) {
		submitter := new(MockSubmitter)
		c := contactform.New(submitter, contactform.WithClock(&manualClock{}))
		c.SetField(contactform.FieldName, "")
		c.SetField(contactform.FieldEmail, "bad")
		c.SetField(contactform.FieldSubject, "hi")
		c.SetField(contactform.FieldMessage, "short")

		err := c.Submit(ctx)
		assert.ErrorIs(t, err, contactform.ErrInvalidDraft)

		snap := c.Snapshot()
		assert.Equal(t, contactform.StateInvalid, snap.State)
		assert.Len(t, snap.Errors, 4)
		assert.Contains(t, snap.Errors, contactform.FieldName)
		assert.Contains(t, snap.Errors, contactform.FieldEmail)
		assert.Contains(t, snap.Errors, contactform.FieldSubject)
		assert.Contains(t, snap.Errors, contactform.FieldMessage)
		assert.False(t, snap.ButtonDisabled)
		assert.Equal(t, contactform.SubmitLabel, snap.ButtonLabel)
		submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("Should keep every field and show the server message on failure", func(t *testing.T) {
		submitter := new(MockSubmitter)
		c := contactform.New(submitter, contactform.WithClock(&manualClock{}))
		fillValid(c)
		c.SetField(contactform.FieldPhone, "555 010 9999")
		before := c.Snapshot().Draft

		submitter.On("Submit", ctx, mock.Anything).Return("", &submitError{msg: "Failed to send email"}).Once()

		err := c.Submit(ctx)
		assert.Error(t, err)

		snap := c.Snapshot()
		assert.Equal(t, contactform.StateFailed, snap.State)
		assert.Equal(t, before, snap.Draft)
		assert.Equal(t, contactform.Result{Kind: contactform.ResultError, Message: "Failed to send email"}, snap.Result)
		submitter.AssertNumberOfCalls(t, "Submit", 1)
	})

	t.Run("Should fall back to generic text for transport errors", func(t *testing.T) {
		submitter := new(MockSubmitter)
		c := contactform.New(submitter, contactform.WithClock(&manualClock{}))
		fillValid(c)

		submitter.On("Submit", ctx, mock.Anything).Return("", errors.New("connection reset")).Once()

		_ = c.Submit(ctx)
		assert.Equal(t, contactform.DefaultFailureText, c.Snapshot().Result.Message)
	})

	t.Run("Should allow typing past the message limit but block submission", func(t *testing.T) {
		submitter := new(MockSubmitter)
		c := contactform.New(submitter, contactform.WithClock(&manualClock{}))
		fillValid(c)
		long := strings.Repeat("m", 1001)
		c.SetField(contactform.FieldMessage, long)

		snap := c.Snapshot()
		assert.Equal(t, long, snap.Draft.Message)
		assert.Equal(t, 1001, snap.MessageLength)
		assert.Equal(t, 1000, snap.MessageLimit)

		assert.ErrorIs(t, c.Submit(ctx), contactform.ErrInvalidDraft)
		submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("Should attach a bot token before sending", func(t *testing.T) {
		submitter := new(MockSubmitter)
		tokens := new(MockTokenSource)
		c := contactform.New(submitter, contactform.WithClock(&manualClock{}), contactform.WithTokenSource(tokens))
		fillValid(c)

		tokens.On("Token", ctx).Return("recaptcha-token", nil).Once()
		submitter.On("Submit", ctx, mock.MatchedBy(func(s contactform.Submission) bool {
			return s.BotToken == "recaptcha-token"
		})).Return("", nil).Once()

		require.NoError(t, c.Submit(ctx))
		assert.Equal(t, contactform.DefaultSuccessText, c.Snapshot().Result.Message)
		submitter.AssertExpectations(t)
	})

	t.Run("Should fail without sending when no bot token is available", func(t *testing.T) {
		submitter := new(MockSubmitter)
		tokens := new(MockTokenSource)
		c := contactform.New(submitter, contactform.WithClock(&manualClock{}), contactform.WithTokenSource(tokens))
		fillValid(c)

		tokens.On("Token", ctx).Return("", errors.New("widget not loaded")).Once()

		assert.Error(t, c.Submit(ctx))
		snap := c.Snapshot()
		assert.Equal(t, contactform.StateFailed, snap.State)
		assert.Equal(t, contactform.BotCheckFailedText, snap.Result.Message)
		assert.Equal(t, "Jo", snap.Draft.Name)
		submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})
}

func TestControllerSending(t *testing.T) {
	t.Run("Should disable the button and reject a second submit while sending", func(t *testing.T) {
		submitter := new(MockSubmitter)
		release := make(chan struct{})
		started := make(chan struct{})

		var sendingSnap contactform.Snapshot
		var mu sync.Mutex
		c := contactform.New(submitter,
			contactform.WithClock(&manualClock{}),
			contactform.WithOnChange(func(s contactform.Snapshot) {
				if s.State == contactform.StateSending {
					mu.Lock()
					sendingSnap = s
					mu.Unlock()
				}
			}),
		)
		fillValid(c)

		submitter.On("Submit", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			close(started)
			<-release
		}).Return("ok", nil).Once()

		done := make(chan error, 1)
		go func() { done <- c.Submit(context.Background()) }()

		<-started
		assert.ErrorIs(t, c.Submit(context.Background()), contactform.ErrSubmissionInFlight)

		mu.Lock()
		assert.True(t, sendingSnap.ButtonDisabled)
		assert.Equal(t, contactform.SendingLabel, sendingSnap.ButtonLabel)
		mu.Unlock()

		close(release)
		require.NoError(t, <-done)
		submitter.AssertNumberOfCalls(t, "Submit", 1)
	})
}

func TestControllerBanner(t *testing.T) {
	ctx := context.Background()

	newSucceeded := func(t *testing.T) (*contactform.Controller, *manualClock) {
		submitter := new(MockSubmitter)
		clock := &manualClock{}
		c := contactform.New(submitter, contactform.WithClock(clock))
		fillValid(c)
		submitter.On("Submit", ctx, mock.Anything).Return("sent", nil)
		require.NoError(t, c.Submit(ctx))
		return c, clock
	}

	t.Run("Should revert to idle after the display window", func(t *testing.T) {
		c, clock := newSucceeded(t)

		clock.Advance(4 * time.Second)
		assert.Equal(t, contactform.ResultSuccess, c.Snapshot().Result.Kind)

		clock.Advance(time.Second)
		snap := c.Snapshot()
		assert.Equal(t, contactform.ResultIdle, snap.Result.Kind)
		assert.Equal(t, contactform.StateIdle, snap.State)
	})

	t.Run("Should hide the banner immediately on edit", func(t *testing.T) {
		c, clock := newSucceeded(t)

		c.SetField(contactform.FieldName, "J")
		snap := c.Snapshot()
		assert.Equal(t, contactform.ResultIdle, snap.Result.Kind)
		assert.Equal(t, contactform.StateIdle, snap.State)
		assert.Equal(t, 0, clock.pending())
	})

	t.Run("Should not let a stale timer clear a newer banner", func(t *testing.T) {
		submitter := new(MockSubmitter)
		clock := &manualClock{}
		c := contactform.New(submitter, contactform.WithClock(clock))
		submitter.On("Submit", ctx, mock.Anything).Return("sent", nil)

		fillValid(c)
		require.NoError(t, c.Submit(ctx))
		clock.Advance(3 * time.Second)

		fillValid(c)
		require.NoError(t, c.Submit(ctx))

		clock.Advance(2 * time.Second)
		assert.Equal(t, contactform.ResultSuccess, c.Snapshot().Result.Kind)

		clock.Advance(3 * time.Second)
		assert.Equal(t, contactform.ResultIdle, c.Snapshot().Result.Kind)
	})

	t.Run("Should cancel the timer on close", func(t *testing.T) {
		c, clock := newSucceeded(t)

		c.Close()
		assert.Equal(t, 0, clock.pending())
		assert.ErrorIs(t, c.Submit(ctx), contactform.ErrClosed)
	})

	t.Run("Should honour a custom display window", func(t *testing.T) {
		submitter := new(MockSubmitter)
		clock := &manualClock{}
		c := contactform.New(submitter, contactform.WithClock(clock), contactform.WithBannerDuration(time.Second))
		fillValid(c)
		submitter.On("Submit", ctx, mock.Anything).Return("", errors.New("down"))

		_ = c.Submit(ctx)
		clock.Advance(time.Second)
		assert.Equal(t, contactform.StateIdle, c.Snapshot().State)
	})
}

func TestControllerEditing(t *testing.T) {
	t.Run("Should clear only the edited field error", func(t *testing.T) {
		c := contactform.New(new(MockSubmitter), contactform.WithClock(&manualClock{}))
		_ = c.Submit(context.Background())
		require.Len(t, c.Snapshot().Errors, 4)

		c.SetField(contactform.FieldName, "J")
		snap := c.Snapshot()
		assert.NotContains(t, snap.Errors, contactform.FieldName)
		assert.Len(t, snap.Errors, 3)
		assert.Equal(t, contactform.StateIdle, snap.State)
	})

	t.Run("Should validate a touched field on blur", func(t *testing.T) {
		c := contactform.New(new(MockSubmitter), contactform.WithClock(&manualClock{}))

		c.Blur(contactform.FieldEmail)
		assert.Empty(t, c.Snapshot().Errors)

		c.SetField(contactform.FieldEmail, "bad")
		c.Blur(contactform.FieldEmail)
		assert.Equal(t, "Please enter a valid email address", c.Snapshot().Errors[contactform.FieldEmail])

		c.SetField(contactform.FieldEmail, "a@b.co")
		c.Blur(contactform.FieldEmail)
		assert.Empty(t, c.Snapshot().Errors)
	})

	t.Run("Should ignore unknown fields", func(t *testing.T) {
		var calls int
		c := contactform.New(new(MockSubmitter),
			contactform.WithClock(&manualClock{}),
			contactform.WithOnChange(func(contactform.Snapshot) { calls++ }),
		)
		c.SetField(contactform.Field("company"), "Acme")
		assert.Equal(t, 0, calls)
	})
}
