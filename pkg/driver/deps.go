package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotInstalled is returned when a git dependency has no checkout yet.
var ErrNotInstalled = errors.New("dependency not installed")

// Installer materialises manifest dependencies under a cache directory:
// git sources are cloned into <cache>/pkg/src/<name>/<version>.
type Installer struct {
	CacheDir string
	Logger   *slog.Logger
}

func NewInstaller(cacheDir string, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = discardLogger()
	}
	return &Installer{CacheDir: cacheDir, Logger: logger}
}

// Install resolves every dependency of manifest and returns the lockfile that
// describes them. The lockfile is not written.
func (in *Installer) Install(ctx context.Context, manifest *Manifest) (*Lockfile, error) {
	if manifest == nil {
		return nil, fmt.Errorf("deps: nil manifest")
	}
	lock := NewLockfile(manifest.Name, "lox")
	lock.Path = filepath.Join(manifest.Dir(), LockfileFileName)
	for _, name := range manifest.DependencyNames() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		spec := manifest.Dependencies[name]
		var (
			pkg *LockedPackage
			err error
		)
		switch {
		case spec.Path != "":
			pkg, err = lockPathDependency(manifest, name, spec)
		case spec.Git != "":
			pkg, err = in.fetchGit(ctx, name, spec)
		default:
			err = fmt.Errorf("dependency %q: must specify git or path", name)
		}
		if err != nil {
			return nil, fmt.Errorf("deps: %w", err)
		}
		in.Logger.Info("dependency installed", "name", pkg.Name, "version", pkg.Version, "source", pkg.Source)
		lock.Packages = append(lock.Packages, pkg)
	}
	lock.normalize()
	return lock, nil
}

// DependencyDirs returns the local directory of every manifest dependency in
// name order. Git dependencies are located through lock.
func DependencyDirs(manifest *Manifest, lock *Lockfile, cacheDir string) ([]string, error) {
	if manifest == nil {
		return nil, nil
	}
	dirs := make([]string, 0, len(manifest.Dependencies))
	for _, name := range manifest.DependencyNames() {
		spec := manifest.Dependencies[name]
		if spec.Path != "" {
			dirs = append(dirs, manifest.resolve(spec.Path))
			continue
		}
		locked, ok := lock.Find(sanitizeName(name))
		if !ok {
			return nil, fmt.Errorf("%w: %s (run `lox deps install`)", ErrNotInstalled, name)
		}
		dir := gitCheckoutDir(cacheDir, name, locked.Version)
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("%w: %s at %s (run `lox deps install`)", ErrNotInstalled, name, dir)
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

func lockPathDependency(manifest *Manifest, name string, spec *DependencySpec) (*LockedPackage, error) {
	dir := manifest.resolve(spec.Path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dependency %q: %s is not a directory", name, dir)
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: checksum: %w", name, err)
	}
	return &LockedPackage{
		Name:     sanitizeName(name),
		Version:  "path",
		Source:   "path:" + filepath.ToSlash(spec.Path),
		Checksum: checksum,
		Dir:      dir,
	}, nil
}

func (in *Installer) fetchGit(ctx context.Context, name string, spec *DependencySpec) (*LockedPackage, error) {
	if in.CacheDir == "" {
		return nil, errors.New("git fetcher unavailable: no cache directory")
	}
	url := strings.TrimSpace(spec.Git)
	baseDir := filepath.Join(in.CacheDir, "pkg", "src", sanitizeName(name))
	version, commit, err := in.ensureGitCheckout(ctx, baseDir, url, spec)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}

	checkoutDir := filepath.Join(baseDir, sanitizePathSegment(version))
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: checksum: %w", name, err)
	}
	return &LockedPackage{
		Name:     sanitizeName(name),
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, commit),
		Checksum: checksum,
		Dir:      checkoutDir,
	}, nil
}

// ensureGitCheckout clones into a temporary directory next to the target and
// renames it into place, so an interrupted clone never looks installed.
func (in *Installer) ensureGitCheckout(ctx context.Context, baseDir, url string, spec *DependencySpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(rev))
		if _, err := os.Stat(existing); err == nil {
			in.Logger.Debug("git checkout cached", "dir", existing)
			return rev, rev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	in.Logger.Debug("git clone", "url", url, "revision", string(revision))
	repo, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		// Rev pins are their own version so the cached-checkout lookup above finds them.
		version = rev
	}
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{
		Hash:  *hash,
		Force: true,
	}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitCheckoutDir(cacheDir, name, version string) string {
	return filepath.Join(cacheDir, "pkg", "src", sanitizeName(name), sanitizePathSegment(version))
}

func gitPinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func gitRevisionFromSpec(spec *DependencySpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git dependencies require rev, tag, or branch")
}

// dirChecksum hashes every file under path by relative name and contents,
// skipping VCS metadata.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func sanitizeName(name string) string {
	return strings.ToLower(sanitizePathSegment(name))
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
