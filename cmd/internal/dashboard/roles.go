package dashboard

import (
	"context"
	"fmt"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/credential"
)

// RequireRole returns ErrRoleDenied unless the stored role matches one of roles.
func RequireRole(ctx context.Context, store *credential.Store, roles ...string) error {
	if store.HasRole(ctx, roles...) {
		return nil
	}
	role := store.Role(ctx)
	if role == "" {
		role = "none"
	}
	return fmt.Errorf("%w: have %s, need one of %v", ErrRoleDenied, role, roles)
}
