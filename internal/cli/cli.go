// Package cli implements the packbench command-line interface.
//
// The commands solve single instances, benchmark algorithms on instance
// suites, generate random instances, compute lower bounds and export
// archived runs. Settings come from a TOML config file (see --config) and
// can be overridden per command with flags.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels in the command's context.Context.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/packbench/internal/bounds"
	"github.com/piwi3910/packbench/internal/engine"
	"github.com/piwi3910/packbench/internal/model"
	"github.com/piwi3910/packbench/internal/project"
)

const appName = "packbench"

// annotationConfigMayBeMissing marks commands that accept a --config path
// which does not exist yet.
const annotationConfigMayBeMissing = "config-may-be-missing"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command results; logs go to the logger.
	Out io.Writer

	configPath string
	config     model.BenchConfig
}

// New creates a CLI printing results to out and logging to logw.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		Out:    out,
		config: model.DefaultBenchConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Packbench runs and benchmarks strip packing heuristics",
		Long: `Packbench packs rectangles into a strip of fixed width with the NextFit and
FirstFit skyline heuristics, their greedy shifting variants and an evolutionary
search, and benchmarks them against lower bounds on standard instance suites.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+project.DefaultConfigPath()+")")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.benchCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.boundCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.configCommand())

	return root
}

// loadConfig reads the config file. A missing default file is not an
// error; a missing explicit one is.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	path := c.configPath
	explicit := cmd.Flags().Changed("config")
	if path == "" {
		path = project.DefaultConfigPath()
	}
	if explicit && cmd.Annotations[annotationConfigMayBeMissing] == "" {
		if err := requireFile(path); err != nil {
			return err
		}
	}
	cfg, err := project.LoadConfig(path)
	if err != nil {
		return err
	}
	c.config = cfg
	c.configPath = path
	loggerFromContext(cmd.Context()).Debug("Loaded config", "path", path)
	return nil
}

// evolutionConfig converts the configured evolutionary parameters.
func evolutionConfig(cfg model.EvolutionConfig) (engine.EvolutionConfig, error) {
	selection, err := engine.ParseSelection(cfg.Selection)
	if err != nil {
		return engine.EvolutionConfig{}, err
	}
	ec := engine.EvolutionConfig{
		Mu:             cfg.Mu,
		Lambda:         cfg.Lambda,
		Selection:      selection,
		Seed:           cfg.Seed,
		MaxGenerations: cfg.MaxGenerations,
	}
	return ec, ec.Validate()
}

// resolveAlgorithms maps names to algorithms. "ea" or "MuLambdaEA" adds
// the evolutionary search decoded by the configured decoder.
func (c *CLI) resolveAlgorithms(names []string, bound bounds.LowerBound) ([]engine.Algorithm, error) {
	var algorithms []engine.Algorithm
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if isEvolutionary(name) {
			ea, err := c.evolutionary(bound)
			if err != nil {
				return nil, err
			}
			algorithms = append(algorithms, ea)
			continue
		}
		alg, err := engine.ByName(name)
		if err != nil {
			return nil, err
		}
		algorithms = append(algorithms, alg)
	}
	if len(algorithms) == 0 {
		return nil, fmt.Errorf("no algorithms selected (known: %s, ea)", strings.Join(engine.Names(), ", "))
	}
	return algorithms, nil
}

func isEvolutionary(name string) bool {
	lower := strings.ToLower(name)
	return lower == "ea" || strings.HasPrefix(lower, "mulambdaea")
}

func (c *CLI) evolutionary(bound bounds.LowerBound) (engine.Algorithm, error) {
	ec, err := evolutionConfig(c.config.Evolution)
	if err != nil {
		return nil, fmt.Errorf("evolution config: %w", err)
	}
	decoder, err := engine.ByName(c.config.Evolution.Decoder)
	if err != nil {
		return nil, fmt.Errorf("evolution decoder: %w", err)
	}
	return engine.NewEvolutionary(decoder, bound, ec), nil
}
