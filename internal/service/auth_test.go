package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/whisperwall/internal/apperror"
	"github.com/sakif/whisperwall/internal/auth"
	"github.com/sakif/whisperwall/internal/credential"
	"github.com/sakif/whisperwall/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeAccountRepo is an in-memory implementation of
// repository.AccountRepository. A fake (not a mock framework) keeps the
// tests dependency-free and readable.
type fakeAccountRepo struct {
	byID       map[string]*model.Account
	byUsername map[string]*model.Account
	bySubject  map[string]*model.Account
	nextID     int

	// set to non-nil to simulate storage failures
	createErr error
	updateErr error
	listErr   error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byID:       make(map[string]*model.Account),
		byUsername: make(map[string]*model.Account),
		bySubject:  make(map[string]*model.Account),
		nextID:     1,
	}
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *model.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, taken := f.byUsername[account.Username]; taken {
		return apperror.Conflict("account", account.Username)
	}
	account.ID = fmt.Sprintf("fake-id-%d", f.nextID)
	f.nextID++
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt

	copied := *account
	f.byID[account.ID] = &copied
	f.byUsername[account.Username] = &copied
	if account.GoogleSubject != nil {
		f.bySubject[*account.GoogleSubject] = &copied
	}
	return nil
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("account", id)
	}
	return a, nil
}

func (f *fakeAccountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	a, ok := f.byUsername[username]
	if !ok {
		return nil, apperror.NotFound("account", username)
	}
	return a, nil
}

func (f *fakeAccountRepo) GetByGoogleSubject(ctx context.Context, subject string) (*model.Account, error) {
	a, ok := f.bySubject[subject]
	if !ok {
		return nil, apperror.NotFound("account", subject)
	}
	return a, nil
}

func (f *fakeAccountRepo) FindOrCreateByGoogleSubject(ctx context.Context, subject, email string) (*model.Account, error) {
	if a, ok := f.bySubject[subject]; ok {
		return a, nil
	}
	account := &model.Account{Username: email, GoogleSubject: &subject}
	if err := f.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (f *fakeAccountRepo) UpdateSecret(ctx context.Context, id, secret string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	a, ok := f.byID[id]
	if !ok {
		return apperror.NotFound("account", id)
	}
	a.Secret = &secret
	a.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAccountRepo) ListSecrets(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []string
	for _, a := range f.byID {
		if a.HasSecret() {
			out = append(out, *a.Secret)
		}
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestAuthService wires an AuthService over the fake repo with a fast
// bcrypt codec (cost 4 — the minimum).
func newTestAuthService(repo *fakeAccountRepo) *AuthService {
	return NewAuthService(repo, credential.NewBcryptCodecForTest(4), testLogger())
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister_CreatesAccountWithDerivedCredential(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestAuthService(repo)

	account, err := svc.Register(context.Background(), "alice@example.com", "pw1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if account.ID == "" {
		t.Error("Register() did not produce an account ID")
	}
	if account.Credential == "pw1" {
		t.Error("Register() stored the plaintext password under the hashed codec")
	}
	if account.Credential == "" {
		t.Error("Register() stored no credential")
	}
}

func TestRegister_EmptyInput(t *testing.T) {
	svc := newTestAuthService(newFakeAccountRepo())

	if _, err := svc.Register(context.Background(), "", "pw"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Register(empty username) error = %v, want ErrValidation", err)
	}
	if _, err := svc.Register(context.Background(), "user", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Register(empty password) error = %v, want ErrValidation", err)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "alice@example.com", "pw1"); err != nil {
		t.Fatalf("first Register(): %v", err)
	}

	_, err := svc.Register(context.Background(), "alice@example.com", "pw2")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Register() duplicate error = %v, want ErrConflict", err)
	}

	// The existing account must still hold the original credential.
	existing, err := svc.Login(context.Background(), "alice@example.com", "pw1")
	if err != nil {
		t.Fatalf("original password no longer verifies: %v", err)
	}
	if existing == nil {
		t.Fatal("Login() returned nil account")
	}
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLogin_Succeeds(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestAuthService(repo)

	registered, err := svc.Register(context.Background(), "alice@example.com", "pw1")
	if err != nil {
		t.Fatalf("Register(): %v", err)
	}

	account, err := svc.Login(context.Background(), "alice@example.com", "pw1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if account.ID != registered.ID {
		t.Errorf("Login() resolved account %q, want %q", account.ID, registered.ID)
	}
}

func TestLogin_UnknownUsername(t *testing.T) {
	svc := newTestAuthService(newFakeAccountRepo())

	_, err := svc.Login(context.Background(), "ghost@example.com", "pw")
	if !errors.Is(err, apperror.ErrUnknownUsername) {
		t.Errorf("Login() error = %v, want ErrUnknownUsername", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "alice@example.com", "pw1"); err != nil {
		t.Fatalf("Register(): %v", err)
	}

	_, err := svc.Login(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, apperror.ErrCredentialMismatch) {
		t.Errorf("Login() error = %v, want ErrCredentialMismatch", err)
	}
}

func TestLogin_GoogleOnlyAccountHasNoUsablePassword(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestAuthService(repo)

	// Account created via Google — empty local credential.
	_, err := svc.LoginOrRegisterGoogle(context.Background(), &auth.GoogleUser{
		Subject: "goog-1", Email: "carol@example.com",
	})
	if err != nil {
		t.Fatalf("LoginOrRegisterGoogle(): %v", err)
	}

	_, err = svc.Login(context.Background(), "carol@example.com", "")
	if !errors.Is(err, apperror.ErrCredentialMismatch) {
		t.Errorf("Login() against empty credential error = %v, want ErrCredentialMismatch", err)
	}
}

// =========================================================================
// GOOGLE SIGN-IN TESTS
// =========================================================================

func TestLoginOrRegisterGoogle_SameSubjectSameAccount(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestAuthService(repo)

	gUser := &auth.GoogleUser{Subject: "goog-42", Email: "dave@example.com"}

	first, err := svc.LoginOrRegisterGoogle(context.Background(), gUser)
	if err != nil {
		t.Fatalf("first callback: %v", err)
	}
	second, err := svc.LoginOrRegisterGoogle(context.Background(), gUser)
	if err != nil {
		t.Fatalf("second callback: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("two callbacks produced two accounts: %q and %q", first.ID, second.ID)
	}
}

func TestLoginOrRegisterGoogle_RejectsEmptySubject(t *testing.T) {
	svc := newTestAuthService(newFakeAccountRepo())

	if _, err := svc.LoginOrRegisterGoogle(context.Background(), nil); err == nil {
		t.Error("LoginOrRegisterGoogle(nil) should fail")
	}
	if _, err := svc.LoginOrRegisterGoogle(context.Background(), &auth.GoogleUser{}); err == nil {
		t.Error("LoginOrRegisterGoogle with empty subject should fail")
	}
}

// =========================================================================
// GET ACCOUNT TESTS
// =========================================================================

func TestGetAccountByID(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := newTestAuthService(repo)

	registered, _ := svc.Register(context.Background(), "findme@example.com", "pw")

	account, err := svc.GetAccountByID(context.Background(), registered.ID)
	if err != nil {
		t.Fatalf("GetAccountByID() error = %v", err)
	}
	if account.Username != "findme@example.com" {
		t.Errorf("Username = %q", account.Username)
	}

	if _, err := svc.GetAccountByID(context.Background(), ""); err == nil {
		t.Error("GetAccountByID(\"\") should fail")
	}
	if _, err := svc.GetAccountByID(context.Background(), "no-such"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetAccountByID(unknown) error = %v, want ErrNotFound", err)
	}
}
