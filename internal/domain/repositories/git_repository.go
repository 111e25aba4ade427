package repositories

import (
	"context"
	"errors"
)

// ErrNonFastForward is returned by Push when the remote branch advanced
// underneath us. The orchestrator treats it as a transient conflict.
var ErrNonFastForward = errors.New("push rejected: non-fast-forward")

// GitRepository provides the commit/push primitives the publish
// orchestrator needs against a local checkout. Network timeouts are the
// implementation's concern and surface as ordinary errors.
type GitRepository interface {
	// HeadShortHash returns the abbreviated hash of the current HEAD commit.
	HeadShortHash(dir string) (string, error)

	// CurrentBranch returns the short name of the checked-out branch.
	CurrentBranch(dir string) (string, error)

	// StageAndCommit stages the given paths and commits them with the
	// configured automation identity. Returns false without error when the
	// staged paths contain no actual change (no-op success).
	StageAndCommit(
		dir string,
		paths []string,
		message, authorName, authorEmail string,
	) (bool, error)

	// Push pushes the given branch to origin. Returns ErrNonFastForward
	// when the remote rejected the update because it advanced.
	Push(ctx context.Context, dir, branch string) error

	// ResetToRemote fetches origin and hard-resets the branch onto the
	// remote head, discarding local commits so they can be reapplied.
	ResetToRemote(ctx context.Context, dir, branch string) error
}
