// Package sandbox provides throwaway Ruby projects on disk, with an optional
// git repository, for exercising wraith and external Ruby tools.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoCommit is returned when no commit matches a lookup.
var ErrNoCommit = errors.New("no matching commit")

// ErrOutsideSandbox is returned for paths that escape the sandbox root.
var ErrOutsideSandbox = errors.New("path escapes sandbox")

// Sandbox is a temporary project directory.
type Sandbox struct {
	root   string
	repo   *git.Repository
	author object.Signature
}

// New creates an empty sandbox under the system temp directory.
func New() (*Sandbox, error) {
	dir, err := os.MkdirTemp("", "wraith-sandbox-")
	if err != nil {
		return nil, fmt.Errorf("creating sandbox: %w", err)
	}
	// Resolve symlinked temp dirs so paths compare equal to scanner output.
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		dir = real
	}
	return &Sandbox{
		root:   dir,
		author: object.Signature{Name: "wraith", Email: "wraith@example.com"},
	}, nil
}

// Root returns the absolute sandbox directory.
func (s *Sandbox) Root() string { return s.root }

// Destroy removes the sandbox and everything in it.
func (s *Sandbox) Destroy() error {
	return os.RemoveAll(s.root)
}

// Path resolves a sandbox-relative path.
func (s *Sandbox) Path(rel string) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideSandbox, rel)
	}
	return abs, nil
}

// Write creates or replaces a file, creating parent directories.
func (s *Sandbox) Write(rel, content string) error {
	path, err := s.Path(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// Read returns a file's content.
func (s *Sandbox) Read(rel string) (string, error) {
	path, err := s.Path(rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Remove deletes a file or directory tree.
func (s *Sandbox) Remove(rel string) error {
	path, err := s.Path(rel)
	if err != nil {
		return err
	}
	return os.RemoveAll(path)
}

// Exists reports whether a path exists in the sandbox.
func (s *Sandbox) Exists(rel string) bool {
	path, err := s.Path(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Glob returns sandbox-relative, slash-separated paths matching pattern,
// sorted. Files under .git are never returned.
func (s *Sandbox) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(s.root, m)
		if err != nil {
			return nil, err
		}
		rel = filepath.ToSlash(rel)
		if rel == ".git" || strings.HasPrefix(rel, ".git/") {
			continue
		}
		out = append(out, rel)
	}
	sort.Strings(out)
	return out, nil
}

// GitInit turns the sandbox into a git repository.
func (s *Sandbox) GitInit() error {
	repo, err := git.PlainInit(s.root, false)
	if err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	s.repo = repo
	return nil
}

func (s *Sandbox) repository() (*git.Repository, error) {
	if s.repo != nil {
		return s.repo, nil
	}
	repo, err := git.PlainOpen(s.root)
	if err != nil {
		return nil, fmt.Errorf("opening sandbox repository: %w", err)
	}
	s.repo = repo
	return repo, nil
}

// GitCommit stages every change and records a commit at the given time.
// A zero time means now.
func (s *Sandbox) GitCommit(message string, when time.Time) (*object.Commit, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, fmt.Errorf("git add: %w", err)
	}

	if when.IsZero() {
		when = time.Now()
	}
	sig := s.author
	sig.When = when

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:            &sig,
		Committer:         &sig,
		AllowEmptyCommits: true,
	})
	if err != nil {
		return nil, fmt.Errorf("git commit: %w", err)
	}
	return repo.CommitObject(hash)
}

// GitLastCommit returns the commit at HEAD.
func (s *Sandbox) GitLastCommit() (*object.Commit, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCommit, err)
	}
	return repo.CommitObject(head.Hash())
}

// GitFindCommit returns the most recent commit whose message matches pattern.
func (s *Sandbox) GitFindCommit(pattern string) (*object.Commit, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	iter, err := repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCommit, err)
	}
	defer iter.Close()

	var found *object.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if re.MatchString(c.Message) {
			found = c
			return errStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCommit, pattern)
	}
	return found, nil
}

var errStop = errors.New("stop")

// ExecResult is the outcome of a command run inside the sandbox.
type ExecResult struct {
	Out      string
	Err      string
	ExitCode int
	Success  bool
}

// Exec runs a command with the sandbox as working directory. A non-zero exit
// is reported in the result, not as an error; the error is reserved for
// commands that could not run at all.
func (s *Sandbox) Exec(ctx context.Context, name string, args ...string) (ExecResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = s.root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := ExecResult{Out: stdout.String(), Err: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.Success = true
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, fmt.Errorf("running %s: %w", name, err)
	}
	return res, nil
}

// SorbetTC runs `srb tc` with the given arguments.
func (s *Sandbox) SorbetTC(ctx context.Context, args ...string) (ExecResult, error) {
	return s.Exec(ctx, "srb", append([]string{"tc"}, args...)...)
}
