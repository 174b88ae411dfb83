package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/urfave/cli.v1"
)

const cliToolVersion = "lox 0.1.0-dev"

// Exit codes follow the sysexits convention: 65 for malformed input, 70 for
// failures while the program runs.
const (
	exitOK           = 0
	exitFailure      = 1
	exitStaticError  = 65
	exitRuntimeError = 70
)

// exitStatus carries a process exit code out of a command action without
// printing anything further.
type exitStatus struct {
	code int
}

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// session holds the streams and settings shared by every command.
type session struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	logger *slog.Logger
	report *reporter
}

var (
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "Log pipeline phases and dependency activity to stderr",
	}
	noColorFlag = cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored diagnostics",
	}
	jsonFlag = cli.BoolFlag{
		Name:  "json",
		Usage: "Emit the syntax tree as JSON",
	}
)

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	s := &session{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		report: newReporter(stdout, stderr, false),
	}
	err := newApp(s).Run(args)
	var status exitStatus
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &status):
		return status.code
	default:
		s.report.errorf("%v", err)
		return exitFailure
	}
}

func newApp(s *session) *cli.App {
	app := cli.NewApp()
	app.Name = "lox"
	app.Usage = "run and inspect Lox scripts"
	app.Version = cliToolVersion
	app.Writer = s.stdout
	app.ErrWriter = s.stderr
	app.Flags = []cli.Flag{verboseFlag, noColorFlag}
	app.Before = s.configure
	app.Action = func(ctx *cli.Context) error {
		if ctx.NArg() > 0 || hasRunnableManifest() {
			return s.runCommand(ctx)
		}
		return s.replCommand(ctx)
	}
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "Run a script, or the manifest's main script",
			ArgsUsage: "[script]",
			Action:    s.runCommand,
		},
		{
			Name:   "repl",
			Usage:  "Start an interactive session",
			Action: s.replCommand,
		},
		{
			Name:      "check",
			Usage:     "Scan, parse and resolve without running",
			ArgsUsage: "[script]",
			Action:    s.checkCommand,
		},
		{
			Name:      "tokens",
			Usage:     "Print the token stream of a script",
			ArgsUsage: "<script>",
			Action:    s.tokensCommand,
		},
		{
			Name:      "ast",
			Usage:     "Print the syntax tree of a script",
			ArgsUsage: "<script>",
			Flags:     []cli.Flag{jsonFlag},
			Action:    s.astCommand,
		},
		{
			Name:      "test",
			Usage:     "Run annotated fixture scripts",
			ArgsUsage: "[paths...]",
			Action:    s.testCommand,
		},
		{
			Name:  "deps",
			Usage: "Manage manifest dependencies",
			Subcommands: []cli.Command{
				{
					Name:   "install",
					Usage:  "Fetch dependencies and write package.lock",
					Action: s.depsInstallCommand,
				},
			},
		},
	}
	return app
}

// configure applies the global flags before any command runs.
func (s *session) configure(ctx *cli.Context) error {
	if ctx.Bool(verboseFlag.Name) {
		s.logger = slog.New(slog.NewTextHandler(s.stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	useColor := !ctx.Bool(noColorFlag.Name) && isTerminal(s.stderr)
	s.report = newReporter(s.stdout, s.stderr, useColor)
	return nil
}
