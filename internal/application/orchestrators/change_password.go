package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"opsboard/internal/domain/account"
)

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordInput carries input for the change-password form.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
	Confirm         string
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
}

var (
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrNewPasswordSame      = errors.New("new password must be different from the current one")
	ErrPasswordMismatch     = errors.New("new password and confirmation do not match")
)

// ExecuteChangePassword replaces an account's password after checking the current one.
// PRE: AccountID names an existing account
// POST: password rehashed and PasswordChangeRequired cleared
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.NewPassword != input.Confirm {
		return ErrPasswordMismatch
	}
	if input.NewPassword == input.CurrentPassword {
		return ErrNewPasswordSame
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		return ErrCurrentPasswordWrong
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		return err
	}
	acct.PasswordChangeRequired = false
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "account_id", acct.ID)
	return nil
}
