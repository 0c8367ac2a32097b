// Package coesnap implements the Repository Snapshot Provider: it
// materializes a read-only RepoHandle for each input repository entry,
// owning a per-repo cache that checks may use to share intermediate parse
// results.
package coesnap

import (
	"fmt"
	"os"

	"github.com/google/go-github/v66/github"
)

// RepoHandle is the read-only view of a single repository a check
// observes. Exactly one RepoHandle owns a given Cache at a time.
type RepoHandle struct {
	id        string
	name      string
	fullName  string
	localPath string
	apiData   *github.Repository // nil when the caller supplied no GitHub metadata
	cache     *Cache
}

// ID returns the stable repository identifier.
func (h *RepoHandle) ID() string { return h.id }

// Name returns the short repository name.
func (h *RepoHandle) Name() string { return h.name }

// FullName returns the owner-qualified repository name.
func (h *RepoHandle) FullName() string { return h.fullName }

// LocalPath returns the absolute working-tree directory, or "" when the
// repository was supplied without a local checkout.
func (h *RepoHandle) LocalPath() string { return h.localPath }

// APIData returns the optional GitHub-sourced metadata attached to this
// repository, or nil. Typed as `any` to satisfy coecore.RepoHandleView
// without that package importing go-github.
func (h *RepoHandle) APIData() any {
	if h.apiData == nil {
		return nil
	}
	return h.apiData
}

// GitHubRepository returns the typed GitHub metadata, or nil.
func (h *RepoHandle) GitHubRepository() *github.Repository { return h.apiData }

// CacheGetOrCompute delegates to the handle's per-repo Cache.
func (h *RepoHandle) CacheGetOrCompute(key string, compute func() (any, error)) (any, error) {
	return h.cache.GetOrCompute(key, compute)
}

// Entry describes one repository to snapshot, as supplied by the caller.
type Entry struct {
	ID        string
	Name      string
	FullName  string
	LocalPath string
	APIData   *github.Repository
}

// Provider materializes RepoHandles. It never clones or network-fetches;
// that remains the caller's responsibility.
type Provider struct{}

// NewProvider creates a Snapshot Provider.
func NewProvider() *Provider { return &Provider{} }

// Acquire constructs a RepoHandle for entry, attaching a fresh, empty
// Cache. If entry.LocalPath is non-empty but does not name a readable
// directory, it is cleared to empty rather than erroring: checks that
// require a local_path will observe it missing and must respond with
// StatusSkipped or a degraded, api_data-only analysis.
func (p *Provider) Acquire(entry Entry) *RepoHandle {
	localPath := entry.LocalPath
	if localPath != "" {
		info, err := os.Stat(localPath)
		if err != nil || !info.IsDir() {
			localPath = ""
		}
	}

	return &RepoHandle{
		id:        entry.ID,
		name:      entry.Name,
		fullName:  entry.FullName,
		localPath: localPath,
		apiData:   entry.APIData,
		cache:     newCache(),
	}
}

// WithHandle constructs the handle for entry, invokes fn with it, and
// guarantees the cache is dropped and the handle released when fn returns
// — regardless of how fn terminates.
func WithHandle(p *Provider, entry Entry, fn func(*RepoHandle) error) (err error) {
	h := p.Acquire(entry)
	defer func() {
		h.cache.clear()
		h.cache = nil
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during scoped repository check: %v", r)
		}
	}()
	return fn(h)
}
