// Package newsletter records newsletter sign-ups.
package newsletter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"coursepress/internal/models"
	"coursepress/internal/store"
)

// ErrConflict means the email was inserted by a concurrent request between
// the lookup and the insert.
var ErrConflict = errors.New("email already subscribed")

// Outcome tells a new subscription apart from a repeat.
type Outcome int

const (
	Subscribed Outcome = iota + 1
	AlreadySubscribed
)

// Repository is the subscriber side of the content store.
// *store.SubscriberStore satisfies it.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	Create(ctx context.Context, email string) (*models.Subscriber, error)
}

// Service handles subscription requests.
type Service struct {
	subs Repository
}

// NewService creates a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{subs: repo}
}

// Normalize trims and lower-cases an email address.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is present and well formed.
func ValidateEmail(email string) error {
	return validation.Validate(email,
		validation.Required.Error("email is required"),
		is.EmailFormat.Error("must be a valid email address"),
	)
}

// Subscribe records email unless it is already on the list.
func (s *Service) Subscribe(ctx context.Context, email string) (Outcome, error) {
	email = Normalize(email)
	if err := ValidateEmail(email); err != nil {
		return 0, err
	}

	existing, err := s.subs.FindByEmail(ctx, email)
	if err != nil {
		slog.Error("subscriber lookup failed", "operation", "find_subscriber", "scope", "users", "error", err)
		return 0, err
	}
	if existing != nil {
		return AlreadySubscribed, nil
	}

	if _, err := s.subs.Create(ctx, email); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return 0, ErrConflict
		}
		slog.Error("subscribe failed", "operation", "create_subscriber", "scope", "users", "error", err)
		return 0, err
	}

	slog.Info("newsletter subscription added")
	return Subscribed, nil
}
