package auth

import (
	"errors"
	"sync"
	"time"
)

const (
	// verificationWindow is how long a freshly registered account may wait
	// for its email code before the registration is treated as discarded.
	verificationWindow = 300 * time.Second

	// resendCooldown is the minimum gap between two resend requests.
	resendCooldown = 60 * time.Second
)

var (
	// ErrNoPendingVerification is returned when no verification window is
	// open for the given email.
	ErrNoPendingVerification = errors.New("auth: no pending verification")

	// ErrVerificationExpired is returned when the verification window ran
	// out. The registration is considered discarded at that point.
	ErrVerificationExpired = errors.New("auth: verification window expired")

	// ErrResendCooldown is returned when a resend is requested before the
	// cooldown has elapsed.
	ErrResendCooldown = errors.New("auth: resend requested too soon")
)

type pendingVerification struct {
	expiresAt    time.Time
	nextResendAt time.Time
}

// VerificationTracker keeps the verification windows of registrations that
// still await their email code. Each window lasts five minutes and allows a
// resend once per minute.
type VerificationTracker struct {
	mu      sync.Mutex
	pending map[string]pendingVerification
	now     func() time.Time
}

// NewVerificationTracker creates an empty tracker.
func NewVerificationTracker() *VerificationTracker {
	return &VerificationTracker{
		pending: make(map[string]pendingVerification),
		now:     time.Now,
	}
}

// Begin opens (or reopens) the verification window for email. The resend
// cooldown starts immediately because registration already sent a code.
func (t *VerificationTracker) Begin(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.pending[email] = pendingVerification{
		expiresAt:    now.Add(verificationWindow),
		nextResendAt: now.Add(resendCooldown),
	}
}

// Check reports whether a usable window is open for email. An expired window
// is dropped and reported as ErrVerificationExpired exactly once; later calls
// see ErrNoPendingVerification.
func (t *VerificationTracker) Check(email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.pending[email]
	if !ok {
		return ErrNoPendingVerification
	}
	if t.now().After(entry.expiresAt) {
		delete(t.pending, email)
		return ErrVerificationExpired
	}
	return nil
}

// CanResend reports whether a resend may be issued right now.
func (t *VerificationTracker) CanResend(email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.pending[email]
	if !ok {
		return nil // no window yet, a resend will open one
	}
	if t.now().After(entry.expiresAt) {
		delete(t.pending, email)
		return nil
	}
	if t.now().Before(entry.nextResendAt) {
		return ErrResendCooldown
	}
	return nil
}

// MarkResent records a successful resend: the window restarts at five
// minutes and the next resend is allowed after the cooldown.
func (t *VerificationTracker) MarkResent(email string) {
	t.Begin(email)
}

// Complete closes the window after a successful verification.
func (t *VerificationTracker) Complete(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, email)
}
