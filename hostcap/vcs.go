package hostcap

import "context"

// FileStatus describes one changed path as reported by the VCS.
type FileStatus struct {
	Path   string
	Status string // e.g. "M", "A", "D", "??"
}

// StagedStats summarizes the currently staged diff.
type StagedStats struct {
	FilesChanged int
	Insertions   int
	Deletions    int
}

// VCS is the minimal version-control capability the commit pipeline
// (§4.6) needs. Exit codes from the underlying tool must be surfaced
// faithfully through the returned error, never swallowed.
type VCS interface {
	// ChangedFiles lists files with uncommitted changes, each with status.
	ChangedFiles(ctx context.Context) ([]FileStatus, error)
	// StageFile stages exactly one path. Never stages more than asked.
	StageFile(ctx context.Context, path string) error
	// StagedStats reads diffstat-equivalent numbers for the current index.
	StagedStats(ctx context.Context) (StagedStats, error)
	// Commit creates a commit with the given message using currently
	// staged changes. Returns an error if nothing is staged.
	Commit(ctx context.Context, message string) error
	// HeadShortHash returns the short hash of HEAD after a commit.
	HeadShortHash(ctx context.Context) (string, error)
	// WriteGitignore appends the given patterns to .gitignore, skipping
	// any pattern already present verbatim.
	WriteGitignore(ctx context.Context, patterns []string) error
}
