package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"themeforge/internal/auth"
	"themeforge/internal/repositories"
	"themeforge/internal/services"
	"themeforge/internal/shared"
	"themeforge/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	forge      *services.ForgeService
	lifecycle  *auth.Lifecycle
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.ThemeEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Forge      *services.ForgeService
	Lifecycle  *auth.Lifecycle
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	var engine *tasks.ThemeEngine
	if opts.Forge != nil {
		engine = tasks.NewThemeEngine(opts.Forge, nil)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		forge:      opts.Forge,
		lifecycle:  opts.Lifecycle,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     engine,
	}
}

// SetLogger replaces the runner's logger, e.g. to redirect output to a file
// while the wizard owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, generateCommand, themesCommand, previewCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openThemeStore opens the configured database and returns the theme
// repository over it. The caller owns closing the database handle.
func (r *Runner) openThemeStore() (*repositories.ThemeRepository, *sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return repositories.NewThemeRepository(db), db, nil
}

// sessionPath returns the session file location under the user's home
// directory.
func sessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".themeforge/session.json"
	}
	return filepath.Join(home, ".themeforge", "session.json")
}

// draftPath returns the wizard draft file location.
func draftPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".themeforge/draft.json"
	}
	return filepath.Join(home, ".themeforge", "draft.json")
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
