package entities

// Commit is one commit message belonging to the pull request.
type Commit struct {
	SHA     string
	Message string
}

// ChangedFile is one file touched by the pull request, with its patch text.
// Patch may be empty for binary or oversized files; extraction tolerates that.
type ChangedFile struct {
	Path  string
	Patch string
}

// PullRequestMetadata is the raw, already-fetched view of one pull request
// as supplied by a source repository. The core never paginates or retries
// on top of it.
type PullRequestMetadata struct {
	Number     int
	Title      string
	Body       string
	Author     string
	BranchName string
	BaseBranch string
	Commits    []Commit
	Files      []ChangedFile
}

// SiblingPullRequest identifies one open PR belonging to the same grouped
// update, targeted by changeset propagation.
type SiblingPullRequest struct {
	Number     int
	BranchName string
	Title      string
}

// PRContext is the normalized extraction result for one pull request.
// Built once, read-only downstream.
type PRContext struct {
	IsBotAuthored    bool
	BranchName       string
	Title            string
	Body             string
	IsGroupedUpdate  bool
	IsSecurityUpdate bool
	Ecosystem        string
	Dependencies     []DependencyChange
}
