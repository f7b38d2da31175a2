package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vb-entreprise/rrsa-server/internal/docstore"
	"github.com/vb-entreprise/rrsa-server/internal/shared"
)

// AccountsCollection holds provider account documents. The document id is
// the opaque subject id handed to the rest of the system.
const AccountsCollection = "accounts"

// LocalProvider implements Provider on the document store with bcrypt
// password hashes. It talks to the store directly rather than through the
// repository layer because authentication must surface store failures,
// not degrade them.
type LocalProvider struct {
	store  docstore.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewLocalProvider constructs a LocalProvider.
func NewLocalProvider(store docstore.Store, logger *slog.Logger) *LocalProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalProvider{store: store, logger: logger, now: time.Now}
}

type accountFields struct {
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	DisplayName  string `json:"displayName"`
	Disabled     bool   `json:"disabled"`
}

// SignIn validates email/password credentials.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Subject, error) {
	email = normalizeEmail(email)
	docs, err := p.store.FindByField(ctx, AccountsCollection, "email", email)
	if err != nil {
		return Subject{}, fmt.Errorf("identity: sign in: %w", err)
	}
	if len(docs) == 0 {
		return Subject{}, shared.ErrInvalidCredentials
	}
	doc := docs[0]
	account := decodeAccount(doc.Fields)
	if account.Disabled {
		return Subject{}, shared.ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Subject{}, shared.ErrInvalidCredentials
	}
	return Subject{ID: doc.ID, Email: account.Email, DisplayName: account.DisplayName}, nil
}

// CreateAccount provisions a new account with a bcrypt password hash.
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password, displayName string) (Subject, error) {
	email = normalizeEmail(email)
	docs, err := p.store.FindByField(ctx, AccountsCollection, "email", email)
	if err != nil {
		return Subject{}, fmt.Errorf("identity: create account: %w", err)
	}
	if len(docs) > 0 {
		return Subject{}, shared.ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Subject{}, fmt.Errorf("identity: hash password: %w", err)
	}
	id, err := p.store.Insert(ctx, AccountsCollection, map[string]any{
		"email":        email,
		"passwordHash": string(hash),
		"displayName":  strings.TrimSpace(displayName),
		"disabled":     false,
	}, p.now())
	if err != nil {
		return Subject{}, fmt.Errorf("identity: create account: %w", err)
	}
	return Subject{ID: id, Email: email, DisplayName: strings.TrimSpace(displayName)}, nil
}

func decodeAccount(fields map[string]any) accountFields {
	account := accountFields{}
	if v, ok := fields["email"].(string); ok {
		account.Email = v
	}
	if v, ok := fields["passwordHash"].(string); ok {
		account.PasswordHash = v
	}
	if v, ok := fields["displayName"].(string); ok {
		account.DisplayName = v
	}
	if v, ok := fields["disabled"].(bool); ok {
		account.Disabled = v
	}
	return account
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ Provider = (*LocalProvider)(nil)
