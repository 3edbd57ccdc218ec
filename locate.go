package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"nexterror/diagnostics"
	"nexterror/editor"
	"nexterror/logger"
	"nexterror/navigate"
	"nexterror/types"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errNoMarker = errors.New("no matching diagnostic")

var locateCmd = &cobra.Command{
	Use:   "locate [flags] command",
	Short: "Run a navigation command against snapshot files",
	Long: `Locate loads diagnostics from snapshot files (.toml, .json or .msgpack),
places a virtual cursor and prints where the navigation command lands.

Example:
  nexterror locate --snapshot lint.toml --document main.go --cursor 10:4 next.warning`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List navigation commands",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, c := range navigate.Commands() {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
	},
}

func init() {
	locateCmd.Flags().StringArray("snapshot", nil, "diagnostic snapshot file (repeatable)")
	locateCmd.Flags().String("document", "", "active document (default: first document with diagnostics)")
	locateCmd.Flags().String("cursor", "1:1", "cursor position as line:column, 1-indexed")
	locateCmd.Flags().String("base-dir", "", "directory relative file names resolve against")
	locateCmd.Flags().Int("height", editor.DefaultViewportHeight, "viewport height in lines")
	locateCmd.Flags().Int("repeat", 1, "run the command this many times")
	_ = locateCmd.MarkFlagRequired("snapshot")
}

type locateOptions struct {
	snapshots []string
	document  string
	cursor    types.Position
	baseDir   string
	height    int
	repeat    int
	color     bool
}

func runLocate(cmd *cobra.Command, args []string) error {
	navCmd, err := navigate.ParseCommand(args[0])
	if err != nil {
		return err
	}

	opts := locateOptions{color: useColor(cmd)}
	if opts.snapshots, err = cmd.Flags().GetStringArray("snapshot"); err != nil {
		return fmt.Errorf("failed to get snapshot flag: %w", err)
	}
	if opts.document, err = cmd.Flags().GetString("document"); err != nil {
		return fmt.Errorf("failed to get document flag: %w", err)
	}
	if opts.baseDir, err = cmd.Flags().GetString("base-dir"); err != nil {
		return fmt.Errorf("failed to get base-dir flag: %w", err)
	}
	if opts.height, err = cmd.Flags().GetInt("height"); err != nil {
		return fmt.Errorf("failed to get height flag: %w", err)
	}
	if opts.repeat, err = cmd.Flags().GetInt("repeat"); err != nil {
		return fmt.Errorf("failed to get repeat flag: %w", err)
	}
	cursorFlag, err := cmd.Flags().GetString("cursor")
	if err != nil {
		return fmt.Errorf("failed to get cursor flag: %w", err)
	}
	if opts.cursor, err = parseCursor(cursorFlag); err != nil {
		return err
	}

	config, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	logger.SetGlobal(logger.NewStreamLogger(cmd.ErrOrStderr(), logger.ParseLogLevel(config.LogLevel)))
	defer logger.SetGlobal(nil)

	return locate(cmd.Context(), cmd.OutOrStdout(), navCmd, opts)
}

// locate runs navCmd opts.repeat times against an in-memory editor and prints each landing spot
func locate(ctx context.Context, w io.Writer, navCmd navigate.Command, opts locateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sources := make([]diagnostics.Source, 0, len(opts.snapshots))
	mem := editor.NewMemory(opts.height)
	var firstDoc types.DocumentID
	for _, path := range opts.snapshots {
		snap, err := diagnostics.LoadSnapshot(path, opts.baseDir)
		if err != nil {
			return err
		}
		for _, doc := range snap.Documents() {
			mem.AddDocument(doc)
			if firstDoc == "" || doc < firstDoc {
				firstDoc = doc
			}
		}
		sources = append(sources, snap)
	}
	gatherer := diagnostics.NewGatherer(sources...)
	gatherer.SetTimeout(0)

	doc := firstDoc
	if opts.document != "" {
		doc = resolveDocument(opts.document, opts.baseDir)
	}
	if doc == "" {
		return errNoMarker
	}
	mem.Focus(doc, opts.cursor)

	// no scrolling animation to wait for
	nav := navigate.New(mem, mem, gatherer, nil, navigate.Config{})
	printer := newResultPrinter(w, opts.color)

	for range max(opts.repeat, 1) {
		res, err := nav.Run(ctx, navCmd)
		if err != nil {
			return err
		}
		if !res.Found {
			return errNoMarker
		}
		diags, err := gatherer.Diagnostics(ctx, res.Document)
		if err != nil {
			return err
		}
		printer.print(res, messageAt(diags, res))
	}
	return nil
}

func resolveDocument(name, baseDir string) types.DocumentID {
	if !filepath.IsAbs(name) {
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		name = filepath.Join(baseDir, name)
	}
	return types.DocumentID(filepath.Clean(name))
}

// parseCursor reads a 1-indexed "line:column" or "line" into a Position
func parseCursor(s string) (types.Position, error) {
	lineStr, colStr, hasCol := strings.Cut(strings.TrimSpace(s), ":")
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return types.Position{}, fmt.Errorf("invalid cursor %q: line must be a positive number", s)
	}
	col := 1
	if hasCol {
		col, err = strconv.Atoi(colStr)
		if err != nil || col < 1 {
			return types.Position{}, fmt.Errorf("invalid cursor %q: column must be a positive number", s)
		}
	}
	return types.Position{Line: line - 1, Column: col - 1}, nil
}

// messageAt finds the message of the marker the navigation landed on
func messageAt(diags []types.Diagnostic, res navigate.Result) string {
	for _, d := range diags {
		if d.Position.Equal(res.Position) && d.Severity == res.Severity {
			return d.Message
		}
	}
	return ""
}

type resultPrinter struct {
	w         io.Writer
	location  *color.Color
	severity  map[types.Severity]*color.Color
	unchanged *color.Color
}

func newResultPrinter(w io.Writer, useColor bool) *resultPrinter {
	p := &resultPrinter{
		w:        w,
		location: color.New(color.Bold),
		severity: map[types.Severity]*color.Color{
			types.SeverityError:   color.New(color.FgRed, color.Bold),
			types.SeverityWarning: color.New(color.FgYellow, color.Bold),
			types.SeverityInfo:    color.New(color.FgBlue),
			types.SeverityHint:    color.New(color.FgCyan),
		},
		unchanged: color.New(color.Faint),
	}
	all := append([]*color.Color{p.location, p.unchanged}, slices.Collect(maps.Values(p.severity))...)
	for _, c := range all {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *resultPrinter) print(res navigate.Result, message string) {
	line := fmt.Sprintf("%s: %s",
		p.location.Sprintf("%s:%s", res.Document, res.Position),
		p.severity[res.Severity].Sprint(res.Severity))
	if message != "" {
		line += ": " + message
	}
	if !res.Moved {
		line += p.unchanged.Sprint(" (unchanged)")
	}
	fmt.Fprintln(p.w, line)
}
