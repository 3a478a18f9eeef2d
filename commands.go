package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"threef/internal/assist"
	"threef/internal/board"
	"threef/internal/canvas"
	"threef/internal/config"
	"threef/internal/workspace"
)

var errAuditFailed = errors.New("audit did not pass")

// entryFlags are the entries a headless command works on.
type entryFlags struct {
	form     string
	function string
	feeling  string
	extra    []string
}

func (f *entryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.form, "form", "", "what it was (Form)")
	cmd.Flags().StringVar(&f.function, "function", "", "what it was for (Function)")
	cmd.Flags().StringVar(&f.feeling, "feeling", "", "how it felt (Feeling)")
	cmd.Flags().StringArrayVar(&f.extra, "entry", nil, "one more entry as category=text (repeatable)")
}

// board lays the flags out on a fresh board. --form, --function and
// --feeling fill the first entry of each column; every --entry adds one.
func (f *entryFlags) board(log *zap.Logger) (*board.Board, error) {
	b := board.New(log.Named("board"))
	first := map[workspace.Category]string{
		workspace.Form:     f.form,
		workspace.Function: f.function,
		workspace.Feeling:  f.feeling,
	}
	for cat, text := range first {
		if _, err := b.SetContent(b.Entries.Entries(cat)[0].ID, text); err != nil {
			return nil, err
		}
	}
	for _, raw := range f.extra {
		name, text, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("--entry %q: want category=text", raw)
		}
		cat, err := workspace.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("--entry %q: %w", raw, err)
		}
		e, err := b.AddEntry(cat)
		if err != nil {
			return nil, err
		}
		if _, err := b.SetContent(e.ID, text); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func generatorFor(ctx context.Context, cfg *config.Config, log *zap.Logger) (assist.Generator, error) {
	return assist.NewGenerator(ctx, assist.Options{
		Backend: cfg.Backend,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout.D(),
		Log:     log.Named("assist"),
	})
}

func polishCmd() *cobra.Command {
	var in entryFlags

	cmd := &cobra.Command{
		Use:   "polish",
		Short: "Ask for one clarifying question about a reflection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			b, err := in.board(log)
			if err != nil {
				return err
			}
			gen, err := generatorFor(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout.D())
			defer cancel()

			question, err := assist.Polish(ctx, gen, assist.TextsFrom(b.Entries), 0)
			if err != nil {
				return err
			}
			if question == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "(no suggestion)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), question)
			return nil
		},
	}

	in.bind(cmd)
	return cmd
}

func auditCmd() *cobra.Command {
	var in entryFlags
	var plain bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit a reflection; exits non-zero when it does not pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			b, err := in.board(log)
			if err != nil {
				return err
			}
			texts := assist.TextsFrom(b.Entries)
			if err := texts.Validate(); err != nil {
				return err
			}
			gen, err := generatorFor(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout.D())
			defer cancel()

			res, err := assist.Audit(ctx, gen, texts)
			if err != nil {
				return err
			}

			report := res.Report()
			if !plain {
				if out, err := glamour.Render(report, "dark"); err == nil {
					report = out
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(report, "\n"))
			if !res.Pass {
				return errAuditFailed
			}
			return nil
		},
	}

	in.bind(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "print the report as markdown")
	return cmd
}

func exportCmd() *cobra.Command {
	var in entryFlags
	var (
		out    string
		width  int
		height int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Draw a reflection as a connected canvas (.txt, .png or .svg)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			b, err := in.board(log)
			if err != nil {
				return err
			}
			chain(b)

			layout := canvas.Arrange(b.Entries.All(), width, height)
			paths := canvas.NewRenderer(log.Named("render")).RenderAll(b.Connections, b.Entries, layout)

			path := out
			if !filepath.IsAbs(path) {
				if path, err = cfg.SavePath(path); err != nil {
					return err
				}
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".png":
				err = canvas.ExportPNG(path, layout, paths)
			case ".svg":
				err = canvas.ExportSVG(path, layout, paths)
			case ".txt":
				err = canvas.ExportVisualTXT(path, canvas.Render(canvas.Scene{Layout: layout, Paths: paths}))
			default:
				return fmt.Errorf("unsupported export format %q (want .txt, .png or .svg)", filepath.Ext(path))
			}
			if err != nil {
				return err
			}
			log.Info("exported", zap.String("path", path))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
			return nil
		},
	}

	in.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "threef.txt", "output file, .txt, .png or .svg")
	cmd.Flags().IntVar(&width, "width", 120, "canvas width in cells")
	cmd.Flags().IntVar(&height, "height", 30, "canvas height in cells")
	return cmd
}

// chain connects the first entry of each column to the next column.
func chain(b *board.Board) {
	for i := 0; i+1 < len(workspace.Categories); i++ {
		from := b.Entries.Entries(workspace.Categories[i])[0]
		to := b.Entries.Entries(workspace.Categories[i+1])[0]
		b.Connections.Add(
			workspace.Handle{EntryID: from.ID, Side: workspace.Right},
			workspace.Handle{EntryID: to.ID, Side: workspace.Left})
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-key KEY",
		Short: "Save the API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Resolve(configPath)
			if err != nil {
				return err
			}
			if strings.TrimSpace(args[0]) == "" {
				return fmt.Errorf("empty API key")
			}
			if _, err := config.SaveCredential(path, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key saved to %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Resolve(configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}
