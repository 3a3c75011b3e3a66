package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/railcheck/internal/checks"
	"github.com/dshills/railcheck/internal/config"
	"github.com/dshills/railcheck/internal/errors"
	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/logging"
	"github.com/dshills/railcheck/internal/ontology"
	"github.com/dshills/railcheck/internal/render"
	"github.com/dshills/railcheck/internal/summary"
	"github.com/dshills/railcheck/internal/validate"
)

type validateFlags struct {
	ontology   string
	configPath string
	quiet      bool
	verbose    bool
	logJSON    bool
}

func newValidateCmd() *cobra.Command {
	var f validateFlags
	cmd := &cobra.Command{
		Use:   "validate <annotations_dir> <output_dir>",
		Short: "Check every scene under a directory and write the issues found",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.New(f.configPath)
			if err != nil {
				return err
			}
			if err := v.BindPFlag("output.csv", cmd.Flags().Lookup("csv")); err != nil {
				return err
			}
			if err := v.BindPFlag("output.json", cmd.Flags().Lookup("json")); err != nil {
				return err
			}
			applyFormatAliases(cmd, v.Set)
			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}
			logger, err := logging.New(f.verbose, f.logJSON)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if f.quiet {
				logger = logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
			}

			return runValidate(cmd, args[0], args[1], cfg, f, logger)
		},
	}
	cmd.Flags().StringVar(&f.ontology, "ontology", "", "ontology document to check annotation attributes against")
	cmd.Flags().StringVar(&f.configPath, "config", "", "config file (yaml, toml or json)")
	cmd.Flags().Bool("csv", false, "write tab-separated <scene>.issues.csv files")
	cmd.Flags().Bool("json", true, "write <scene>.issues.json files")
	for _, format := range []string{"csv", "json"} {
		cmd.Flags().Bool("use-"+format, false, "same as --"+format)
		cmd.Flags().Bool("no-"+format, false, "same as --"+format+"=false")
	}
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "do not print the summary or per-scene progress")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "log per-checker progress")
	cmd.Flags().BoolVar(&f.logJSON, "log-json", false, "log as JSON")
	return cmd
}

// applyFormatAliases forwards --use-<format> and --no-<format> to the
// output.<format> key. --no-<format> wins when both are given.
func applyFormatAliases(cmd *cobra.Command, set func(key string, value any)) {
	for _, format := range []string{"csv", "json"} {
		if on, _ := cmd.Flags().GetBool("use-" + format); on {
			set("output."+format, true)
		}
		if off, _ := cmd.Flags().GetBool("no-" + format); off {
			set("output."+format, false)
		}
	}
}

func runValidate(cmd *cobra.Command, inDir, outDir string, cfg *config.Config, f validateFlags, logger *zap.Logger) error {
	if !cfg.Output.JSON && !cfg.Output.CSV {
		logger.Warn("no output format enabled, nothing to do")
		return nil
	}

	opts := validate.Options{Horizon: checks.HorizonOptions{
		Inclination:      cfg.Horizon.Inclination,
		TolerancePercent: cfg.Horizon.TolerancePercent,
		SkipUncalibrated: cfg.Horizon.SkipUncalibrated,
	}}
	if f.ontology != "" {
		doc, err := ontology.LoadFile(f.ontology)
		if err != nil {
			return errors.Mark(err, errors.ErrConfiguration)
		}
		opts.Ontology = checks.PrepareOntology(doc)
	}
	checkers, err := validate.ByName(cfg.Checks, opts)
	if err != nil {
		return err
	}

	paths, err := findScenes(inDir)
	if err != nil {
		return err
	}
	logger.Debug("scenes found", zap.String("dir", inDir), zap.Int("count", len(paths)))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", outDir)
	}

	results, runErr := validate.Many(cmd.Context(), paths, checkers, cfg.Concurrency, logger)

	var sum summary.Summary
	for _, r := range results {
		if r.Scene == "" {
			// The scene never loaded; there is nothing to export.
			sum.Add(nil, true)
			continue
		}
		sum.Add(r.Issues, r.Err != nil)
		if err := writeIssues(outDir, r.Path, r.Issues, cfg.Output); err != nil {
			runErr = errors.CombineErrors(runErr, err)
		}
	}
	if !f.quiet {
		fmt.Fprint(cmd.OutOrStdout(), render.RenderSummary(&sum))
	}
	if runErr != nil {
		return errors.Wrapf(runErr, "%d of %d scene(s) failed", sum.ScenesFailed, sum.Scenes)
	}
	return nil
}

// findScenes lists the .json files under dir, skipping hidden directories,
// in lexical order.
func findScenes(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "scan %s", dir), errors.ErrConfiguration)
	}
	sort.Strings(paths)
	return paths, nil
}

// writeIssues writes the enabled exports for the scene read from scenePath.
// Scenes with equal base names in different directories share an output
// file; the later one wins.
func writeIssues(outDir, scenePath string, issues []issue.Issue, out config.Output) error {
	base := strings.TrimSuffix(filepath.Base(scenePath), ".json")
	if out.JSON {
		b, err := render.RenderJSON(issues)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(outDir, base+".issues.json"), b, 0o644); err != nil {
			return errors.Wrap(err, "write json")
		}
	}
	if out.CSV {
		b, err := render.RenderCSV(issues)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(outDir, base+".issues.csv"), b, 0o644); err != nil {
			return errors.Wrap(err, "write csv")
		}
	}
	return nil
}
