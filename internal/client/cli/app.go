package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/megasession/internal/client/client"
	"github.com/dmitrijs2005/megasession/internal/client/config"
	"github.com/dmitrijs2005/megasession/internal/client/services"
	"github.com/dmitrijs2005/megasession/internal/cryptox"
	"github.com/dmitrijs2005/megasession/internal/filex"
	"github.com/dmitrijs2005/megasession/internal/logging"
)

var errUsage = errors.New("usage")

type App struct {
	config      *config.Config
	authService services.AuthService
	log         logging.Logger
	reader      *bufio.Reader
	out         io.Writer
	closers     []io.Closer
}

// NewApp wires the API client, crypto and auth service from c. Diagnostics
// go to stderr; wire payloads are logged only when c.Verbose is set and
// written to a transcript file when c.TraceDir is set.
func NewApp(c *config.Config) (*App, error) {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	log := logging.NewTextLogger(os.Stderr, level)

	opts := clientOptions(c, log)
	var closers []io.Closer
	if c.TraceDir != "" {
		f, err := filex.CreateInDir(c.TraceDir, "trace-*.jsonl")
		if err != nil {
			return nil, err
		}
		closers = append(closers, f)
		opts.Observer = client.Observers(client.NewLogObserver(log), client.NewTraceObserver(f))
		log.Info(context.Background(), "writing wire transcript", "path", f.Name())
	}

	apiClient := client.NewHTTPClient(opts)
	as := services.NewAuthService(apiClient, cryptox.NewMega(c.RSABits), log)

	app := newApp(c, as, log, os.Stdin, os.Stdout)
	app.closers = closers
	return app, nil
}

// Close releases files opened by NewApp.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newApp(c *config.Config, as services.AuthService, log logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{config: c, authService: as, log: log, reader: bufio.NewReader(in), out: out}
}

func clientOptions(c *config.Config, log logging.Logger) client.Options {
	return client.Options{
		Host:              c.Host,
		Scheme:            c.Scheme,
		UserAgent:         c.UserAgent,
		Referer:           c.Referer,
		RequestTimeout:    c.RequestTimeout,
		RetryInitialDelay: c.RetryInitialDelay,
		RetryMaxDelay:     c.RetryMaxDelay,
		Logger:            log,
	}
}

// Run executes the subcommand in args and returns its error. An unknown or
// missing subcommand prints the usage and returns an error.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	a.log.Debug(ctx, "running command", "command", cmd)
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "verify":
		return a.verify(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "ephemeral":
		return a.ephemeral(ctx)
	case "errcode":
		return a.errcode(rest)
	case "help":
		a.usage()
		return nil
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
		a.usage()
		return errUsage
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Available commands: register <name> <email>, verify <uh> <code>, login <email>, ephemeral, errcode <code|name>")
}

// arg returns args[i], prompting for it when absent.
func (a *App) arg(args []string, i int, prompt string) (string, error) {
	if i < len(args) && args[i] != "" {
		return args[i], nil
	}
	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s: %w", prompt, errUsage)
	}
	return v, nil
}
