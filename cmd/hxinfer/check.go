package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"hxinfer/internal/diag"
	"hxinfer/internal/diagfmt"
	"hxinfer/internal/driver"
	"hxinfer/internal/observ"
	"hxinfer/internal/project"
	"hxinfer/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [paths...]",
	Short: "Infer types and report diagnostics for Haxe sources",
	Long: `Check parses the given files and directories (or the project sources from
hxinfer.toml), builds one declaration table for all of them and evaluates
every member initializer and method body. The exit status is 1 when any
error is reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		failed, err := runCheck(cmd, args)
		if err != nil {
			return err
		}
		if failed {
			exitCode = 1
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("no-cache", false, "do not read or write the on-disk diagnostics cache")
	checkCmd.Flags().Bool("clear-cache", false, "drop every cached result before checking")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("strict-guards", false, "treat constant-guard warnings as errors")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("preview", false, "show fix suggestions as before/after lines")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

// checkFlags are the check settings after config and flags are merged.
type checkFlags struct {
	cfg      project.CheckConfig
	format   string
	ui       uiMode
	noCache  bool
	clear    bool
	notes    bool
	suggest  bool
	preview  bool
	fullPath bool
	timings  bool
	quiet    bool
	color    bool
}

// overrideCheckConfig applies flags the user set explicitly on top of the
// config file values. Without a config file flag defaults apply as well.
func overrideCheckConfig(cfg project.CheckConfig, fromFile bool, local, global *pflag.FlagSet) (project.CheckConfig, error) {
	use := func(fs *pflag.FlagSet, name string) bool {
		return fs.Changed(name) || !fromFile
	}
	var err error
	if use(global, "max-diagnostics") {
		if cfg.MaxDiagnostics, err = global.GetInt("max-diagnostics"); err != nil {
			return cfg, err
		}
	}
	if use(local, "jobs") {
		if cfg.Jobs, err = local.GetInt("jobs"); err != nil {
			return cfg, err
		}
	}
	if local.Changed("warnings-as-errors") {
		if cfg.WarningsAsErrors, err = local.GetBool("warnings-as-errors"); err != nil {
			return cfg, err
		}
	}
	if local.Changed("strict-guards") {
		if cfg.StrictGuards, err = local.GetBool("strict-guards"); err != nil {
			return cfg, err
		}
	}
	if cfg.MaxDiagnostics < 0 || cfg.Jobs < 0 {
		return cfg, fmt.Errorf("%w: --max-diagnostics and --jobs must not be negative", project.ErrInvalidConfig)
	}
	return cfg, nil
}

func readCheckFlags(cmd *cobra.Command, proj *project.Project, fromFile bool) (checkFlags, error) {
	var cf checkFlags
	var err error
	local := cmd.Flags()
	global := cmd.Root().PersistentFlags()

	if cf.cfg, err = overrideCheckConfig(proj.Config.Check, fromFile, local, global); err != nil {
		return cf, err
	}
	if cf.format, err = local.GetString("format"); err != nil {
		return cf, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch cf.format {
	case "pretty", "json", "short":
	default:
		return cf, fmt.Errorf("unknown format: %s", cf.format)
	}
	uiValue, err := local.GetString("ui")
	if err != nil {
		return cf, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if cf.ui, err = readUIMode(uiValue); err != nil {
		return cf, err
	}
	for name, dst := range map[string]*bool{
		"no-cache":    &cf.noCache,
		"clear-cache": &cf.clear,
		"with-notes":  &cf.notes,
		"suggest":     &cf.suggest,
		"preview":     &cf.preview,
		"fullpath":    &cf.fullPath,
	} {
		if *dst, err = local.GetBool(name); err != nil {
			return cf, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	if cf.timings, err = global.GetBool("timings"); err != nil {
		return cf, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if cf.quiet, err = global.GetBool("quiet"); err != nil {
		return cf, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	cf.color = useColor(cmd, os.Stdout)
	return cf, nil
}

// runCheck reports whether any error was found.
func runCheck(cmd *cobra.Command, args []string) (bool, error) {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return false, err
	}
	defer cleanup()

	wd, err := os.Getwd()
	if err != nil {
		return false, err
	}
	proj, fromFile, err := project.Load(wd)
	if err != nil {
		return false, err
	}
	cf, err := readCheckFlags(cmd, proj, fromFile)
	if err != nil {
		return false, err
	}
	files, err := proj.Sources(args)
	if err != nil {
		return false, err
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no %s files found under %s", project.SourceExt, proj.Root)
	}

	opts := driver.Options{
		MaxDiagnostics:   cf.cfg.MaxDiagnostics,
		Jobs:             cf.cfg.JobsOrDefault(),
		WarningsAsErrors: cf.cfg.WarningsAsErrors,
		StrictGuards:     cf.cfg.StrictGuards,
	}
	if cf.cfg.CacheEnabled() && !cf.noCache {
		cache, err := driver.OpenDiskCache("hxinfer")
		if err != nil && !cf.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "cache disabled: %v\n", err)
		}
		opts.Cache = cache
	}
	if cf.clear && opts.Cache != nil {
		if err := opts.Cache.DropAll(); err != nil {
			return false, err
		}
	}
	if cf.timings {
		opts.Timer = observ.NewTimer()
	}

	var res *driver.Result
	if shouldUseTUI(cf.ui, len(files), cf.format) {
		res, err = runCheckWithUI(cmd.Context(), "checking", files, opts)
	} else {
		res, err = driver.Check(cmd.Context(), files, opts)
	}
	if err != nil {
		return false, err
	}
	if cf.timings {
		driver.AppendTimings(res.Bag, opts.Timer, len(files))
	}

	if err := writeDiagnostics(cmd.OutOrStdout(), res.Bag, res.Program.FS, proj.Root, cf); err != nil {
		return false, err
	}
	if !cf.quiet && cf.format != "json" {
		fmt.Fprintln(cmd.ErrOrStderr(), checkSummary(res, len(files)))
	}
	return res.HasErrors(), nil
}

func writeDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet, base string, cf checkFlags) error {
	mode := diagfmt.PathModeAuto
	if cf.fullPath {
		mode = diagfmt.PathModeAbsolute
	}
	switch cf.format {
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         mode,
			BaseDir:          base,
			IncludeNotes:     cf.notes,
			IncludeFixes:     cf.suggest || cf.preview,
			IncludePreviews:  cf.preview,
		})
	case "short":
		return diagfmt.Short(w, bag, fs, mode, base)
	default:
		return diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:       cf.color,
			Context:     2,
			PathMode:    mode,
			BaseDir:     base,
			ShowNotes:   cf.notes,
			ShowFixes:   cf.suggest || cf.preview,
			ShowPreview: cf.preview,
		})
	}
}

func checkSummary(res *driver.Result, files int) string {
	errors := res.Bag.CountAtLeast(diag.SevError)
	warnings := res.Bag.CountAtLeast(diag.SevWarning) - errors
	cached := 0
	for _, f := range res.Files {
		if f.Cached {
			cached++
		}
	}
	s := fmt.Sprintf("%d %s checked: %d %s, %d %s",
		files, plural(files, "file"), errors, plural(errors, "error"), warnings, plural(warnings, "warning"))
	if cached > 0 {
		s += fmt.Sprintf(" (%d cached)", cached)
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
