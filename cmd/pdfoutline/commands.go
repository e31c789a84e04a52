package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/pdf-outline/internal/config"
	"github.com/thywilljoshua/pdf-outline/internal/outline"
	"github.com/thywilljoshua/pdf-outline/internal/output"
	"github.com/thywilljoshua/pdf-outline/internal/watch"
)

func extractCmd(g *globals) *cobra.Command {
	var out string
	var nested bool
	var diagnostics bool

	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Print the outline of one PDF as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			res, diag, err := a.runner.Process(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if diagnostics {
				b, _ := json.MarshalIndent(diag, "", "  ")
				fmt.Fprintln(cmd.ErrOrStderr(), string(b))
			}

			var b []byte
			if nested || a.cfg.Output.Nested {
				b, err = output.Marshal(struct {
					Title   string         `json:"title"`
					Outline []outline.Node `json:"outline"`
				}{res.Title, outline.Nest(res.Outline)})
			} else {
				b, err = output.Encode(res, a.cfg.Output.Validate)
			}
			if err != nil {
				return err
			}
			if out != "" {
				return os.WriteFile(out, b, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the outline to this file instead of stdout")
	cmd.Flags().BoolVar(&nested, "nested", false, "print headings as a tree")
	cmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "print per-stage counts to stderr")
	return cmd
}

func batchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "batch [input-dir] [output-dir]",
		Short: "Write <name>.json for every PDF under a directory",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			in, out := a.dirs(args)
			sum, err := a.runner.Run(cmd.Context(), in, out)
			if err != nil {
				return err
			}
			b, _ := json.MarshalIndent(sum, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			if sum.Failed > 0 {
				return fmt.Errorf("%d of %d documents failed", sum.Failed, sum.Total)
			}
			return nil
		},
	}
}

func watchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [input-dir] [output-dir]",
		Short: "Process PDFs as they appear in a directory",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := g.load(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if a.mgr.File() != "" {
				a.mgr.OnChange(func(c *config.Config) {
					cls, err := outline.New(c.Outline)
					if err != nil {
						a.logger.Warn("outline config rejected", "error", err)
						return
					}
					a.runner.SetClassifier(cls)
				})
				a.mgr.WatchConfig(a.logger)
			}

			in, out := a.dirs(args)
			return watch.New(a.runner, in, out, a.logger).Run(ctx)
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "pdfoutline.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(output.Schema())
			return err
		},
	}
}
