// Package cli implements the cardsets command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/cardsets/internal/logging"
	"github.com/mesh-intelligence/cardsets/internal/paths"
	"github.com/mesh-intelligence/cardsets/internal/tree"
	"github.com/mesh-intelligence/cardsets/pkg/cardsets"
	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by one invocation of the root command.
type app struct {
	flags     rootFlags
	config    *viper.Viper
	logger    *zap.Logger
	newLogger func(level string, verbose bool) (*zap.Logger, error)
}

func newApp() *app {
	return &app{logger: zap.NewNop(), newLogger: logging.New}
}

// NewRootCmd creates the top-level "cardsets" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cardsets",
		Short: "Manage a tree of card sets",
		Long: "cardsets stores named card sets that nest by naming a parent,\n" +
			"and finds, reports and repairs parent loops.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.cardsets)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.cardsets-db)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newCreateCmd(a),
		newShowCmd(a),
		newUpdateCmd(a),
		newListCmd(a),
		newTreeCmd(a),
		newChildrenCmd(a),
		newReparentCmd(a),
		newBreakLoopCmd(a),
		newRenameCmd(a),
		newDeleteCmd(a),
		newLoopsCmd(a),
		newCheckCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(newApp().run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns its exit code. The logger is
// flushed on every path, failed commands included.
func (a *app) run(args []string, stdout, stderr io.Writer) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	// Syncing stderr fails on some terminals; there is nowhere to report it.
	_ = a.logger.Sync()
	if err != nil {
		fmt.Fprintln(stderr, "cardsets:", err)
	}
	return exitCode(err)
}

// setup loads config.yaml and builds the logger. It runs before every
// subcommand.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	a.config = v

	logger, err := a.newLogger(v.GetString(cfgKeyLogLevel), a.flags.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// dataDir resolves the data directory from flag, config.yaml, env or default.
func (a *app) dataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
}

// withTable attaches the configured backend, runs fn against its card-set
// table and detaches again. Errors from fn are classified for the exit code.
func (a *app) withTable(fn func(table types.CardSetTable, svc *tree.Service) error) error {
	dataDir, err := a.dataDir()
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	catalog, err := a.open(dataDir)
	if err != nil {
		return classify(err)
	}
	defer func() {
		if err := catalog.Detach(); err != nil {
			a.logger.Warn("detach failed", zap.Error(err))
		}
	}()

	table, err := catalog.CardSets()
	if err != nil {
		return sysError(err)
	}
	return classify(fn(table, tree.New(table, tree.WithLogger(a.logger))))
}

// errMemoryBackend rejects the memory backend, whose contents would vanish
// when the process exits.
var errMemoryBackend = errors.New("backend \"memory\" keeps nothing between commands; use \"sqlite\"")

// open attaches the configured backend over dataDir.
func (a *app) open(dataDir string) (types.Catalog, error) {
	backend := a.config.GetString(cfgKeyBackend)
	if backend == types.BackendMemory {
		return nil, errMemoryBackend
	}
	return cardsets.Open(types.Config{Backend: backend, DataDir: dataDir}, a.logger)
}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// userErrors are the failures a user can fix by changing the command line
// or the data; anything else coming out of storage is a system error.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrDuplicateName,
	types.ErrInvalidName,
	types.ErrInvalidArgument,
	types.ErrInvalidFilter,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	tree.ErrLoop,
	errMemoryBackend,
}

// classify marks err as a system error unless it is already classified or
// is one of userErrors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return &exitError{code: exitUserError, err: err}
		}
	}
	return sysError(err)
}

// exitCode maps a command error to a process exit code. Errors cobra raises
// itself, such as unknown flags or a wrong argument count, are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
