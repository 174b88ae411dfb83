package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/driver"
	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/scanner"
	"lox/interpreter-go/pkg/token"
)

func (s *session) runCommand(ctx *cli.Context) error {
	if ctx.NArg() > 1 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(ctx.Args().Tail(), " "))
	}
	program, err := s.loadProgram(ctx.Args().First())
	if err != nil {
		return s.fail(err)
	}

	interp := interpreter.New(
		interpreter.WithStdout(s.stdout),
		interpreter.WithLogger(s.logger),
	)
	for _, unit := range program.Units() {
		start := time.Now()
		if err := interp.ExecuteFile(unit.Path, unit.Statements); err != nil {
			return s.fail(err)
		}
		s.logger.Debug("executed", "path", unit.Path, "elapsed", time.Since(start))
	}
	return nil
}

func (s *session) checkCommand(ctx *cli.Context) error {
	program, err := s.loadProgram(ctx.Args().First())
	if err != nil {
		return s.fail(err)
	}
	for _, unit := range program.Units() {
		if _, err := resolver.Resolve(unit.Statements); err != nil {
			return s.fail(driver.WithPath(unit.Path, err))
		}
	}
	fmt.Fprintln(s.stdout, "check: ok")
	return nil
}

func (s *session) tokensCommand(ctx *cli.Context) error {
	path, err := singleScript(ctx)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tokens, err := scanner.FromBytes(src).ScanTokens()
	if err != nil {
		return s.fail(driver.WithPath(path, err))
	}

	table := tablewriter.NewWriter(s.stdout)
	table.SetHeader([]string{"Line", "Col", "Kind", "Lexeme", "Literal"})
	table.SetAutoWrapText(false)
	for _, tok := range tokens {
		literal := ""
		if tok.Type == token.Number || tok.Type == token.String {
			literal = ast.FormatLiteral(tok.Literal)
		}
		table.Append([]string{
			strconv.Itoa(tok.Pos.Line),
			strconv.Itoa(tok.Pos.Column),
			tok.Type.String(),
			tok.Lexeme,
			literal,
		})
	}
	table.Render()
	return nil
}

func (s *session) astCommand(ctx *cli.Context) error {
	path, err := singleScript(ctx)
	if err != nil {
		return err
	}
	loader, err := driver.NewLoader(1, s.logger)
	if err != nil {
		return err
	}
	unit, err := loader.ParseFile(path)
	if err != nil {
		return s.fail(err)
	}
	if ctx.Bool(jsonFlag.Name) {
		data, err := ast.MarshalProgram(unit.Statements)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.stdout, string(data))
		return nil
	}
	fmt.Fprint(s.stdout, ast.PrintProgram(unit.Statements))
	return nil
}

func (s *session) testCommand(ctx *cli.Context) error {
	roots := []string(ctx.Args())
	if len(roots) == 0 {
		roots = []string{"."}
	}
	var files []string
	for _, root := range roots {
		found, err := driver.ScriptFiles(root)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s scripts found", driver.SourceExt)
	}

	loader, err := driver.NewLoader(len(files), s.logger)
	if err != nil {
		return err
	}
	results := make([]interpreter.FixtureResult, len(files))
	var g errgroup.Group
	g.SetLimit(goruntime.NumCPU())
	for idx, file := range files {
		idx, file := idx, file
		g.Go(func() error {
			result, err := interpreter.RunFixture(loader, file, interpreter.WithLogger(s.logger))
			if err != nil {
				return err
			}
			results[idx] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, result := range results {
		name := displayName(result.Path)
		if result.Passed() {
			s.report.pass("PASS %s", name)
			continue
		}
		failed++
		s.report.fail("FAIL %s", name)
		for _, problem := range result.Problems {
			s.report.printf("    %s\n", problem)
		}
	}
	s.report.printf("%d passed, %d failed\n", len(results)-failed, failed)
	s.logger.Debug("fixtures finished", "total", len(results), "failed", failed)
	if failed > 0 {
		return exitStatus{code: exitFailure}
	}
	return nil
}

func (s *session) depsInstallCommand(ctx *cli.Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	manifest, err := loadManifestFrom(cwd)
	if err != nil {
		return fmt.Errorf("unable to load package.yml: %w", err)
	}
	cacheDir, err := resolveLoxHome()
	if err != nil {
		return err
	}

	s.report.printf("Manifest: %s\n", manifest.Path)
	s.report.printf("Dependencies: %d\n", len(manifest.Dependencies))
	s.report.printf("Cache directory: %s\n", cacheDir)

	existing, err := loadLockfileForManifest(manifest)
	if err != nil {
		return err
	}
	if existing != nil && existing.Root != manifest.Name {
		return fmt.Errorf("lockfile root %q does not match manifest name %q", existing.Root, manifest.Name)
	}

	installer := driver.NewInstaller(cacheDir, s.logger)
	lock, err := installer.Install(context.Background(), manifest)
	if err != nil {
		return fmt.Errorf("failed to resolve dependencies: %w", err)
	}
	lock.Tool = cliToolVersion
	for _, pkg := range lock.Packages {
		s.report.printf("  %s %s (%s)\n", pkg.Name, pkg.Version, pkg.Source)
	}
	if err := driver.WriteLockfile(lock, lock.Path); err != nil {
		return err
	}
	s.report.printf("Wrote %s\n", lock.Path)
	return nil
}

// loadProgram gathers the manifest, lockfile and search paths for entry and
// parses everything that will run. entry may be empty when a manifest with a
// main script governs the working directory.
func (s *session) loadProgram(entry string) (*driver.Program, error) {
	start := entry
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		start = cwd
	}
	manifest, err := loadManifestFrom(start)
	switch {
	case errors.Is(err, errManifestNotFound):
		manifest = nil
	case err != nil:
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	if entry == "" && manifest.EntryPath() == "" {
		return nil, errors.New("no script given and no package.yml with a main script found")
	}

	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		return nil, err
	}
	cacheDir := ""
	if manifest != nil && len(manifest.Dependencies) > 0 {
		if cacheDir, err = resolveLoxHome(); err != nil {
			return nil, err
		}
	}

	loader, err := driver.NewLoader(driver.DefaultCacheSize, s.logger)
	if err != nil {
		return nil, err
	}
	return loader.Load(entry, driver.LoadOptions{
		Manifest:    manifest,
		Lockfile:    lock,
		CacheDir:    cacheDir,
		SearchPaths: searchPathsFromEnv(),
	})
}

// fail reports err and converts it into the matching exit status.
func (s *session) fail(err error) error {
	diag := interpreter.BuildRuntimeDiagnostic("", err)
	switch {
	case diag.Phase.Static():
		s.report.diagnostic(diag)
		return exitStatus{code: exitStaticError}
	case diag.Phase == driver.PhaseRuntime:
		s.report.diagnostic(diag)
		return exitStatus{code: exitRuntimeError}
	default:
		return err
	}
}

func singleScript(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("%s requires exactly one script", ctx.Command.Name)
	}
	return ctx.Args().First(), nil
}

func displayName(path string) string {
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}
