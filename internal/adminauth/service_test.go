package adminauth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"granthalaya/api/internal/store"

	"golang.org/x/crypto/bcrypt"
)

type fakeAdminStore struct {
	admins map[string]store.Admin
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{admins: make(map[string]store.Admin)}
}

func (f *fakeAdminStore) GetAdminByUsername(_ context.Context, username string) (store.Admin, error) {
	admin, ok := f.admins[username]
	if !ok {
		return store.Admin{}, sql.ErrNoRows
	}
	return admin, nil
}

func (f *fakeAdminStore) InsertAdmin(_ context.Context, admin store.Admin) error {
	f.admins[admin.Username] = admin
	return nil
}

func TestSeedAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeAdminStore())

	if err := svc.Seed(ctx, "librarian", "sandhi-rules"); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	admin, err := svc.Login(ctx, "librarian", "sandhi-rules")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if admin.Username != "librarian" || admin.ID == "" {
		t.Fatalf("unexpected admin: %+v", admin)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdminStore()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	fake.admins["librarian"] = store.Admin{ID: "adm_1", Username: "librarian", PasswordHash: string(hash)}
	svc := NewService(fake)

	if _, err := svc.Login(ctx, "librarian", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login() unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fake := newFakeAdminStore()
	svc := NewService(fake)

	if err := svc.Seed(ctx, "librarian", "first"); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	original := fake.admins["librarian"].PasswordHash
	if err := svc.Seed(ctx, "librarian", "second"); err != nil {
		t.Fatalf("Seed() repeat error = %v", err)
	}
	if fake.admins["librarian"].PasswordHash != original {
		t.Fatal("repeat Seed() overwrote the existing admin")
	}
}
