package commands

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zmlAEQ/bls-host/internal/config"
	"github.com/zmlAEQ/bls-host/internal/host"
	"github.com/zmlAEQ/bls-host/internal/randomness"
	"github.com/zmlAEQ/bls-host/pkg/lifecycle"
	"github.com/zmlAEQ/bls-host/pkg/logger"
)

// Exit codes of blsctl.
const (
	ExitOK      = 0
	ExitInvalid = 1 // verify: signature did not verify
	ExitFailure = 2 // malformed input or internal failure
)

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Report writes err to w and returns the process exit code for it. An
// ExitError without a cause (an invalid signature) prints nothing.
func Report(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		if ee.Err != nil {
			fmt.Fprintln(w, "blsctl:", ee.Err)
		}
		return ee.Code
	}
	fmt.Fprintln(w, "blsctl:", err)
	return ExitFailure
}

// Options wires dependencies; zero values select production defaults.
type Options struct {
	Provider randomness.Provider // default: randomness.Default()
	Out      io.Writer           // default: os.Stdout
	Err      io.Writer           // default: os.Stderr
}

type app struct {
	opts Options
	cfg  config.Config
	host *host.Host
	lc   *lifecycle.Manager

	logLevel  string
	logFile   string
	maxRandom int
}

// New builds the root command.
func New(opts Options) *cobra.Command {
	if opts.Provider == nil {
		opts.Provider = randomness.Default()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "blsctl",
		Short:         "BLS12-381 key generation, signing and verification",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides "+config.EnvLogLevel)
	pf.StringVar(&a.logFile, "log-file", "", "write logs to a rotated file; overrides "+config.EnvLogFile)
	pf.IntVar(&a.maxRandom, "max-random", 0, "largest random request in bytes; overrides "+config.EnvMaxRandom)

	root.AddCommand(
		randomCmd(a),
		keygenCmd(a),
		pubkeyCmd(a),
		signCmd(a),
		verifyCmd(a),
		metricsCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFile != "" {
		cfg.LogFile = a.logFile
	}
	if cmd.Flags().Changed("max-random") {
		cfg.MaxRandom = a.maxRandom
	}
	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	if err := logger.Configure(cfg.LoggerOptions()); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	h, err := host.New(cfg, a.opts.Provider)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	a.cfg, a.host = cfg, h
	a.lc = lifecycle.New()
	a.lc.Add(h)
	if err := a.lc.StartAll(ctxOf(cmd)); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.lc == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return a.lc.StopAll(ctx)
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func decodeHex(what, s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: fmt.Errorf("%s: %w", what, err)}
	}
	return b, nil
}

// failed wraps an operation error together with its boundary status.
func failed(op string, err error) error {
	return &ExitError{Code: ExitFailure, Err: fmt.Errorf("%s: %w (status %d %s)", op, err, host.StatusOf(err), host.StatusOf(err))}
}

func (a *app) printHex(b []byte) {
	fmt.Fprintln(a.opts.Out, hex.EncodeToString(b))
}
