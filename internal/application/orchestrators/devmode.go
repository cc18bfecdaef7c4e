package orchestrators

import (
	"errors"
	"slices"

	"opsboard/internal/domain/account"
)

var (
	ErrPreviewNotAdmin      = errors.New("only admins can preview other roles")
	ErrPreviewInvalidRole   = errors.New("preview role is not valid")
	ErrPreviewNotPreviewing = errors.New("not currently previewing a role")
)

// PreviewRoleInput carries the session fields needed to start a role preview.
type PreviewRoleInput struct {
	TargetRole  string
	CurrentRole string
	RealRole    string // non-empty while already previewing
}

// PreviewRoleResult carries the updated session role fields.
type PreviewRoleResult struct {
	Role     string
	RealRole string // empty when the preview ended
}

// ExecutePreviewRole lets an admin see the dashboard as staff or a viewer would.
// PRE: caller is an admin, directly or via RealRole while previewing
// POST: Role is the target; RealRole keeps "admin" unless the target is admin
func ExecutePreviewRole(input PreviewRoleInput) (PreviewRoleResult, error) {
	actual := input.CurrentRole
	if input.RealRole != "" {
		actual = input.RealRole
	}
	if actual != account.RoleAdmin {
		return PreviewRoleResult{}, ErrPreviewNotAdmin
	}
	if !slices.Contains(account.ValidRoles, input.TargetRole) {
		return PreviewRoleResult{}, ErrPreviewInvalidRole
	}
	if input.TargetRole == account.RoleAdmin {
		return PreviewRoleResult{Role: account.RoleAdmin}, nil
	}
	return PreviewRoleResult{Role: input.TargetRole, RealRole: account.RoleAdmin}, nil
}

// ExecuteEndPreview restores the admin role.
// PRE: the session is previewing
func ExecuteEndPreview(realRole string) (PreviewRoleResult, error) {
	if realRole == "" {
		return PreviewRoleResult{}, ErrPreviewNotPreviewing
	}
	if realRole != account.RoleAdmin {
		return PreviewRoleResult{}, ErrPreviewNotAdmin
	}
	return PreviewRoleResult{Role: account.RoleAdmin}, nil
}
