package account_test

import (
	"strings"
	"testing"
	"time"

	"opsboard/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr error
	}{
		{"valid admin", account.Account{Email: "admin@opsboard.test", Role: account.RoleAdmin}, nil},
		{"valid staff", account.Account{Email: "sam@opsboard.test", Role: account.RoleStaff}, nil},
		{"valid viewer", account.Account{Email: "vi@opsboard.test", Role: account.RoleViewer}, nil},
		{"empty email", account.Account{Email: "  ", Role: account.RoleAdmin}, account.ErrEmptyEmail},
		{"missing at", account.Account{Email: "nobody", Role: account.RoleAdmin}, account.ErrInvalidEmail},
		{"email too long", account.Account{Email: strings.Repeat("a", 250) + "@x.io", Role: account.RoleAdmin}, account.ErrEmailTooLong},
		{"unknown role", account.Account{Email: "a@b.c", Role: "coach"}, account.ErrInvalidRole},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.account.Validate()
			if err != tc.wantErr {
				t.Fatalf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

// TestAccount_SetPassword tests password length rules and hashing.
func TestAccount_SetPassword(t *testing.T) {
	var a account.Account
	if err := a.SetPassword(""); err != account.ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
	if err := a.SetPassword("short"); err != account.ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := a.SetPassword("long enough passphrase"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.PasswordHash == "" || a.PasswordHash == "long enough passphrase" {
		t.Fatal("expected a bcrypt hash")
	}
}

// TestAccount_CheckPassword tests verifying against the stored hash.
func TestAccount_CheckPassword(t *testing.T) {
	var a account.Account
	if err := a.CheckPassword("anything"); err != account.ErrWrongPassword {
		t.Fatalf("no hash should fail, got %v", err)
	}
	if err := a.SetPassword("correct horse battery"); err != nil {
		t.Fatal(err)
	}
	if err := a.CheckPassword("correct horse battery"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := a.CheckPassword("wrong horse battery"); err != account.ErrWrongPassword {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}

// TestAccount_Lockout tests the failed-login lock and reset.
func TestAccount_Lockout(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	var a account.Account
	for i := 0; i < account.MaxFailedLogins-1; i++ {
		a.RecordFailedLogin(now)
	}
	if a.IsLocked(now) {
		t.Fatal("should not lock before the limit")
	}
	a.RecordFailedLogin(now)
	if !a.IsLocked(now) {
		t.Fatal("should lock at the limit")
	}
	if a.IsLocked(now.Add(account.LockoutDuration + time.Second)) {
		t.Fatal("lock should expire")
	}
	a.ResetFailedLogins()
	if a.FailedLogins != 0 || a.IsLocked(now) {
		t.Fatal("reset should clear the counter and lock")
	}
}

// TestAccount_CanEdit tests role permissions.
func TestAccount_CanEdit(t *testing.T) {
	for role, want := range map[string]bool{
		account.RoleAdmin:  true,
		account.RoleStaff:  true,
		account.RoleViewer: false,
	} {
		a := account.Account{Role: role}
		if a.CanEdit() != want {
			t.Fatalf("role %s CanEdit = %v, want %v", role, a.CanEdit(), want)
		}
	}
}
