package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/scanner"
	"lox/interpreter-go/pkg/token"
)

// DefaultCacheSize bounds how many parsed scripts a Loader keeps.
const DefaultCacheSize = 128

// SourceExt is the script file extension.
const SourceExt = ".lox"

// Unit is one scanned and parsed script. Units coming out of the cache share
// their token and statement slices, which must be treated as read-only.
type Unit struct {
	Path       string
	Source     []byte
	Tokens     []token.Token
	Statements []ast.Stmt
}

// Program is an entry script plus the scripts that run before it, in order,
// against the same global environment.
type Program struct {
	Prelude []*Unit
	Entry   *Unit
}

// Units returns prelude units followed by the entry.
func (p *Program) Units() []*Unit {
	units := make([]*Unit, 0, len(p.Prelude)+1)
	units = append(units, p.Prelude...)
	if p.Entry != nil {
		units = append(units, p.Entry)
	}
	return units
}

// LoadOptions controls where prelude scripts come from.
type LoadOptions struct {
	Manifest    *Manifest
	Lockfile    *Lockfile
	CacheDir    string
	SearchPaths []string
}

type parsedSource struct {
	tokens []token.Token
	stmts  []ast.Stmt
}

// Loader scans and parses scripts, caching results by content hash.
type Loader struct {
	cache  *lru.ARCCache
	logger *slog.Logger
}

// NewLoader constructs a loader holding at most cacheSize parsed scripts.
func NewLoader(cacheSize int, logger *slog.Logger) (*Loader, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.NewARC(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("loader: cache: %w", err)
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &Loader{cache: cache, logger: logger}, nil
}

// ParseFile reads and parses a script from disk.
func (l *Loader) ParseFile(path string) (*Unit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", abs, err)
	}
	return l.ParseSource(abs, src)
}

// ParseSource parses src as if it were read from path. Static errors come
// back wrapped in a *SourceError.
func (l *Loader) ParseSource(path string, src []byte) (*Unit, error) {
	sum := sha256.Sum256(src)
	key := hex.EncodeToString(sum[:])
	if cached, ok := l.cache.Get(key); ok {
		parsed := cached.(*parsedSource)
		l.logger.Debug("parse cache hit", "path", path)
		return &Unit{Path: path, Source: src, Tokens: parsed.tokens, Statements: parsed.stmts}, nil
	}

	start := time.Now()
	tokens, err := scanner.FromBytes(src).ScanTokens()
	if err != nil {
		return nil, WithPath(path, err)
	}
	stmts, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, WithPath(path, err)
	}
	l.cache.Add(key, &parsedSource{tokens: tokens, stmts: stmts})
	l.logger.Debug("parsed", "path", path, "tokens", len(tokens), "statements", len(stmts), "elapsed", time.Since(start))
	return &Unit{Path: path, Source: src, Tokens: tokens, Statements: stmts}, nil
}

// Load assembles a program. entry may be empty when the manifest names a
// main script.
func (l *Loader) Load(entry string, opts LoadOptions) (*Program, error) {
	if entry == "" {
		entry = opts.Manifest.EntryPath()
	}
	if entry == "" {
		return nil, fmt.Errorf("loader: no entry script given and manifest has no main")
	}

	preludePaths, err := collectPrelude(opts)
	if err != nil {
		return nil, err
	}
	entryAbs, err := filepath.Abs(entry)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve entry %s: %w", entry, err)
	}

	program := &Program{Prelude: make([]*Unit, 0, len(preludePaths))}
	for _, path := range preludePaths {
		if path == entryAbs {
			continue
		}
		unit, err := l.ParseFile(path)
		if err != nil {
			return nil, err
		}
		program.Prelude = append(program.Prelude, unit)
	}
	program.Entry, err = l.ParseFile(entryAbs)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("program loaded", "entry", entryAbs, "prelude", len(program.Prelude))
	return program, nil
}

// collectPrelude orders prelude scripts: search paths, then dependencies, then
// the manifest's own prelude list. Duplicates keep their first position.
func collectPrelude(opts LoadOptions) ([]string, error) {
	var ordered []string
	seen := make(map[string]struct{})
	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("loader: resolve %s: %w", path, err)
		}
		if _, ok := seen[abs]; ok {
			return nil
		}
		seen[abs] = struct{}{}
		ordered = append(ordered, abs)
		return nil
	}

	dirs := append([]string{}, opts.SearchPaths...)
	depDirs, err := DependencyDirs(opts.Manifest, opts.Lockfile, opts.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	dirs = append(dirs, depDirs...)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		files, err := ScriptFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if err := add(file); err != nil {
				return nil, err
			}
		}
	}
	for _, path := range opts.Manifest.PreludePaths() {
		if err := add(path); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// ScriptFiles lists .lox files under root in lexical order. A file root is
// returned as is.
func ScriptFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("loader: stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && (d.Name() == ".git" || d.Name() == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) == SourceExt {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
