package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stemsi/marksheet-analytics/internal/analysis"
	"github.com/stemsi/marksheet-analytics/internal/apperror"
	"github.com/stemsi/marksheet-analytics/internal/config"
	"github.com/stemsi/marksheet-analytics/internal/dataset"
	"github.com/stemsi/marksheet-analytics/internal/logger"
)

// cli carries the state shared by every subcommand.
type cli struct {
	logLevel    string
	logFormat   string
	configPath  string
	parallelism int

	log  zerolog.Logger
	opts config.Analysis
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "analyze",
		Short:         "Analyse a marksheet file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.log = logger.New(cmd.ErrOrStderr(), c.logLevel, c.logFormat)
			opts, err := config.LoadAnalysis(c.configPath)
			if err != nil {
				return err
			}
			c.opts = opts
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "pretty", "log format (pretty or json)")
	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("ANALYSIS_CONFIG"), "analysis thresholds YAML")
	root.PersistentFlags().IntVar(&c.parallelism, "parallelism", analysis.DefaultParallelism, "subjects analysed concurrently")

	root.AddCommand(
		c.validateCmd(),
		c.teachersCmd(),
		c.biasCmd(),
		c.subjectsCmd(),
	)
	return root
}

// ─── validate ──────────────────────────────────────────────────────────

type validateResult struct {
	File            string   `json:"file"`
	Rows            int      `json:"rows"`
	Columns         []string `json:"columns"`
	Subjects        []string `json:"subjects"`
	TeacherSubjects []string `json:"teacher_subjects"`
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a marksheet loads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := c.load(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), validateResult{
				File:            filepath.Base(args[0]),
				Rows:            ds.Len(),
				Columns:         ds.Columns(),
				Subjects:        ds.Subjects(),
				TeacherSubjects: ds.TeacherSubjects(),
			})
		},
	}
}

// ─── teachers ──────────────────────────────────────────────────────────

func (c *cli) teachersCmd() *cobra.Command {
	var subjects []string
	cmd := &cobra.Command{
		Use:   "teachers <file>",
		Short: "Score teacher effectiveness per subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := c.load(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			out, err := analysis.Teachers(ctx, ds, subjects, c.opts, c.parallelism)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringSliceVarP(&subjects, "subject", "s", nil, "subjects to analyse (default: all with a teacher column)")
	return cmd
}

// ─── bias ──────────────────────────────────────────────────────────────

func (c *cli) biasCmd() *cobra.Command {
	var (
		subjects []string
		category string
	)
	cmd := &cobra.Command{
		Use:   "bias <file>",
		Short: "Attribute marks to attendance, teacher and a demographic category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := c.load(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			out, err := analysis.Bias(ctx, ds, subjects, category, c.opts, c.parallelism)
			if err != nil {
				return err
			}
			for _, o := range out {
				if o.Skipped != "" {
					c.log.Warn().Str("subject", o.Subject).Str("reason", o.Skipped).Msg("Subject skipped")
				}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringSliceVarP(&subjects, "subject", "s", nil, "subjects to analyse (default: all)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Gender or Religion (default: first usable)")
	return cmd
}

// ─── subjects ──────────────────────────────────────────────────────────

func (c *cli) subjectsCmd() *cobra.Command {
	var subjects []string
	cmd := &cobra.Command{
		Use:   "subjects <file>",
		Short: "Cross-subject correlation, trends and distributions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := c.load(args[0])
			if err != nil {
				return err
			}
			out, err := analysis.Subjects(cmd.Context(), ds, subjects)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringSliceVarP(&subjects, "subject", "s", nil, "subjects to include (default: all)")
	return cmd
}

// ─── helpers ───────────────────────────────────────────────────────────

func (c *cli) load(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tbl, err := dataset.ReadFile(path, f)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Validate(tbl)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("file", path).Int("rows", ds.Len()).Strs("subjects", ds.Subjects()).Msg("Dataset loaded")
	return ds, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitCode prints err and maps it to an exit code: data problems the user
// can fix in the file exit with exitData.
func exitCode(err error) int {
	status, code := apperror.Classify(err)
	fmt.Fprintf(os.Stderr, "error: %s (%s)\n", err, code)

	var pathErr *os.PathError
	switch {
	case errors.As(err, &pathErr):
		return exitError
	case status >= 400 && status < 500:
		return exitData
	default:
		return exitError
	}
}
