package admingate

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type State string

const (
	StateLocked             State = "locked"
	StateLocallyVerified    State = "locally_verified"
	StateFullyAuthenticated State = "fully_authenticated"
)

const (
	// VerifiedKey holds "true" once the local check has passed.
	VerifiedKey = "kbr_owner_verified"
	// SubjectKey holds the platform identity that completed sign-in.
	SubjectKey = "kbr_owner_subject"

	AccessDeniedMessage = "Access denied. Invalid phone number or password."
)

var ErrNotVerified = errors.New("admin gate: local verification required before sign-in")

var nonDigits = regexp.MustCompile(`\D`)

// Policy is the allow-list the local check compares against.
type Policy struct {
	Phones       []string
	PasswordHash []byte
}

// NewPolicy normalises the phone allow-list and hashes the admin password.
// An empty password disables the password path.
func NewPolicy(phones []string, password string) (Policy, error) {
	p := Policy{}
	for _, phone := range phones {
		if n := NormalizePhone(phone); n != "" {
			p.Phones = append(p.Phones, n)
		}
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return Policy{}, err
		}
		p.PasswordHash = hash
	}
	return p, nil
}

// NormalizePhone keeps digits only and drops a leading 91 country code.
func NormalizePhone(s string) string {
	digits := nonDigits.ReplaceAllString(s, "")
	return strings.TrimPrefix(digits, "91")
}

func (p Policy) allows(candidate string) bool {
	if phone := NormalizePhone(candidate); phone != "" {
		for _, allowed := range p.Phones {
			if phone == allowed {
				return true
			}
		}
	}
	if len(p.PasswordHash) == 0 || candidate == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(candidate)) == nil
}

// Store is where the gate keeps its per-session flags.
type Store interface {
	Load(key string) (string, error)
	Save(key, value string) error
	Remove(key string) error
}

type VerificationResult struct {
	Granted bool   `json:"granted"`
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`
}

// Gate is the client-facing admin check. It hides admin screens from casual
// visitors; authorization of mutations happens in the backend role check.
type Gate struct {
	policy Policy
	store  Store
}

func New(policy Policy, store Store) *Gate {
	return &Gate{policy: policy, store: store}
}

func (g *Gate) State() State {
	verified, err := g.store.Load(VerifiedKey)
	if err != nil || verified != "true" {
		return StateLocked
	}
	subject, err := g.store.Load(SubjectKey)
	if err != nil || subject == "" {
		return StateLocallyVerified
	}
	return StateFullyAuthenticated
}

// Subject returns the platform identity recorded by CompleteSignIn.
func (g *Gate) Subject() string {
	if g.State() != StateFullyAuthenticated {
		return ""
	}
	subject, _ := g.store.Load(SubjectKey)
	return subject
}

// Verify checks a phone number or the admin password. There is no lockout.
func (g *Gate) Verify(candidate string) VerificationResult {
	candidate = strings.TrimSpace(candidate)
	if !g.policy.allows(candidate) {
		return VerificationResult{State: g.State(), Message: AccessDeniedMessage}
	}

	if err := g.store.Save(VerifiedKey, "true"); err != nil {
		// Storage unavailable: the check passed but nothing persists.
		return VerificationResult{Granted: true, State: StateLocked}
	}
	return VerificationResult{Granted: true, State: g.State()}
}

// CompleteSignIn records the platform identity once sign-in has finished.
func (g *Gate) CompleteSignIn(subject string) error {
	if g.State() == StateLocked {
		return ErrNotVerified
	}
	if subject == "" {
		return errors.New("admin gate: empty subject")
	}
	return g.store.Save(SubjectKey, subject)
}

// AbandonSignIn is called when the user backs out of the platform sign-in.
func (g *Gate) AbandonSignIn() {
	g.Clear()
}

// Clear returns the gate to Locked.
func (g *Gate) Clear() {
	_ = g.store.Remove(SubjectKey)
	_ = g.store.Remove(VerifiedKey)
}
