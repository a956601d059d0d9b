// Command geoflow runs declarative geodata workflow scripts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"geoflow/internal/archive"
	"geoflow/internal/audit"
	"geoflow/internal/commands"
	"geoflow/internal/config"
	"geoflow/internal/fetch"
	"geoflow/internal/geo"
	"geoflow/internal/lock"
	"geoflow/internal/logging"
	"geoflow/internal/watch"
	"geoflow/internal/workflow"
)

const version = "1.0.0"

var (
	configPath string
	watchMode  bool
	noReport   bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "geoflow",
	Short: "geoflow executes declarative geodata workflow scripts",
	Long: `geoflow runs workflow scripts: ordered command lists of the form
CommandName(Param="value") executed sequentially against a shared set of
layer, table, and datastore registries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.File)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Execute a workflow script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(args[0])
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <script>",
	Short: "Parse and validate a script without executing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateWorkflow(args[0])
	},
}

var fmtCmd = &cobra.Command{
	Use:   "fmt <script>",
	Short: "Print the script in normalized form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return formatWorkflow(cmd, args[0])
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the geoflow version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "geoflow %s\n", version)
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the available workflow commands",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range commands.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "geoflow.yaml", "path to the project configuration")
	runCmd.Flags().BoolVar(&watchMode, "watch", false, "re-run the script whenever it changes")
	runCmd.Flags().BoolVar(&noReport, "no-report", false, "skip writing the YAML run report")
	rootCmd.AddCommand(runCmd, validateCmd, fmtCmd, versionCmd, commandsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "geoflow: %v\n", err)
		os.Exit(1)
	}
}

// loadScript parses the script file into buildable invocations.
func loadScript(path string) ([]*workflow.Invocation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer func() { _ = f.Close() }()

	steps, err := workflow.ParseScript(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return commands.Build(steps)
}

// newRunContext wires the default collaborators into a fresh workflow context.
func newRunContext(ctx context.Context) (*workflow.Context, func(), error) {
	workDir, err := filepath.Abs(cfg.Project.WorkingDir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve working dir: %w", err)
	}

	tempDir := cfg.Project.TempDir
	cleanup := func() {}
	if tempDir == "" {
		tempDir, err = os.MkdirTemp("", "geoflow-run-")
		if err != nil {
			return nil, nil, fmt.Errorf("create temp dir: %w", err)
		}
		cleanup = func() { _ = os.RemoveAll(tempDir) }
	} else if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create temp dir: %w", err)
	}

	collab := workflow.Collaborators{
		Engine:   geo.NewMemoryEngine(),
		Codec:    geo.NewFileCodec(),
		Archiver: archive.NewZipArchiver(),
		Fetcher:  fetch.NewDownloader(cfg.FetchTimeout()),
	}
	wctx, err := workflow.NewContext(ctx, workDir, tempDir, collab, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return wctx, cleanup, nil
}

func runWorkflow(scriptPath string) error {
	fileLock := lock.NewFileLock(cfg.Run.LockFile)
	if err := fileLock.TryLock(); err != nil {
		return fmt.Errorf("another run is in progress: %w", err)
	}
	defer func() { _ = fileLock.Unlock() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watchMode {
		return runWatch(ctx, scriptPath)
	}

	summary, err := runOnce(ctx, scriptPath)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d commands failed", summary.Failed, summary.Executed)
	}
	return nil
}

// runOnce executes the script a single time and writes the report and audit
// trail for that run.
func runOnce(ctx context.Context, scriptPath string) (workflow.Summary, error) {
	invs, err := loadScript(scriptPath)
	if err != nil {
		return workflow.Summary{}, err
	}

	runID := uuid.NewString()
	auditLog, err := audit.New(filepath.Join(cfg.Run.AuditDir, "audit.jsonl"), runID, 0)
	if err != nil {
		return workflow.Summary{}, err
	}
	defer func() { _ = auditLog.Close() }()

	wctx, cleanup, err := newRunContext(ctx)
	if err != nil {
		return workflow.Summary{}, err
	}
	defer cleanup()
	defer wctx.Teardown()

	logger.Info("run started",
		zap.String("run_id", runID),
		zap.String("script", scriptPath),
		zap.Int("commands", len(invs)))

	started := time.Now()
	proc := workflow.NewProcessor(wctx, invs).WithEventSink(auditLog)
	summary := proc.ExecuteAll()
	finished := time.Now()

	logger.Info("run finished",
		zap.String("run_id", runID),
		zap.Int("executed", summary.Executed),
		zap.Int("failed", summary.Failed),
		zap.String("worst_severity", proc.WorstSeverity().String()),
		zap.Duration("elapsed", finished.Sub(started)))

	if !noReport {
		rep := workflow.BuildReport(proc, scriptPath, summary, started, finished)
		rep.RunID = runID
		path, err := rep.Write(cfg.Run.ReportDir)
		if err != nil {
			return summary, fmt.Errorf("write report: %w", err)
		}
		logger.Info("report written", zap.String("path", path))
	}
	return summary, nil
}

// runWatch executes the script once, then re-runs it after each change until
// interrupted. Failures do not stop the watch loop.
func runWatch(ctx context.Context, scriptPath string) error {
	execute := func() {
		summary, err := runOnce(ctx, scriptPath)
		if err != nil {
			logger.Error("run failed", zap.Error(err))
			return
		}
		if summary.Failed > 0 {
			logger.Warn("run completed with failures", zap.Int("failed", summary.Failed))
		}
	}

	execute()
	w := watch.New(scriptPath, cfg.WatchDebounce(), logger, execute)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func validateWorkflow(scriptPath string) error {
	invs, err := loadScript(scriptPath)
	if err != nil {
		return err
	}

	wctx, cleanup, err := newRunContext(context.Background())
	if err != nil {
		return err
	}
	defer cleanup()
	defer wctx.Teardown()

	failed := 0
	for i, inv := range invs {
		if err := inv.Validate(wctx); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "command %d (%s): %v\n", i+1, inv.Command().Name(), err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d commands failed validation", failed, len(invs))
	}
	fmt.Printf("%d commands validated\n", len(invs))
	return nil
}

func formatWorkflow(cmd *cobra.Command, scriptPath string) error {
	f, err := os.Open(scriptPath)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer func() { _ = f.Close() }()

	steps, err := workflow.ParseScript(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", scriptPath, err)
	}
	for _, s := range steps {
		fmt.Fprintln(cmd.OutOrStdout(), workflow.RenderStep(s))
	}
	return nil
}
