package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/devashishdxt/plait/internal/plait/gomponents"
)

var checkCmd = &cobra.Command{
	Use:     "check [paths...]",
	Aliases: []string{"c"},
	Short:   "Parse and validate templates without generating code",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		paths, err := collectTemplatePaths(cwd, resolvePatterns(args))
		if err != nil {
			return err
		}

		var allErr error
		for _, pth := range paths {
			b, err := os.ReadFile(pth)
			if err != nil {
				allErr = errors.Join(allErr, err)
				continue
			}
			if _, err := gomponents.CompileFile(pth, b); err != nil {
				allErr = errors.Join(allErr, fmt.Errorf("%s: %w", pth, err))
				continue
			}
			slog.Debug("ok", "file", pth)
		}
		if allErr != nil {
			return allErr
		}
		slog.Info("all templates valid", "count", len(paths))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
