package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/devashishdxt/plait/internal/plait/gomponents"
	"github.com/devashishdxt/plait/internal/plait/outfile"
)

var watchFlag bool

var generateCmd = &cobra.Command{
	Use:     "generate [paths...]",
	Aliases: []string{"gen", "g"},
	Short:   "Generate one *.plait.go file next to each *.plait source",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		patterns := resolvePatterns(args)

		if err := generateAll(cwd, patterns); err != nil {
			if !watchFlag {
				return err
			}
			slog.Error("generate failed", "error", err)
		}
		if watchFlag {
			return watch(cwd, patterns)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "watch for template changes and re-generate")
	rootCmd.AddCommand(generateCmd)
}

func generateAll(cwd string, patterns []string) error {
	paths, err := collectTemplatePaths(cwd, patterns)
	if err != nil {
		return err
	}
	var allErr error
	for _, pth := range paths {
		if err := generateFile(pth); err != nil {
			allErr = errors.Join(allErr, err)
		}
	}
	return allErr
}

func generateFile(pth string) error {
	b, err := os.ReadFile(pth)
	if err != nil {
		return err
	}
	src, err := gomponents.CompileFile(pth, b)
	if err != nil {
		return fmt.Errorf("%s: %w", pth, err)
	}
	outPath := pth + ".go"
	if err := outfile.WriteGeneratedFile(outPath, src); err != nil {
		return err
	}
	slog.Debug("generated", "in", pth, "out", outPath)
	return nil
}

// watch re-generates whenever a template under the watched patterns
// changes. Events are debounced briefly because editors tend to fire
// several write events per save.
func watch(cwd string, patterns []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	paths, err := collectTemplatePaths(cwd, patterns)
	if err != nil {
		return err
	}
	dirs := map[string]bool{}
	for _, p := range paths {
		dirs[filepath.Dir(p)] = true
	}
	if len(dirs) == 0 {
		dirs[cwd] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
		slog.Info("watching", "dir", dir)
	}

	var timer *time.Timer
	pending := map[string]bool{}
	fire := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, templateExt) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			pending[ev.Name] = true
			if timer == nil {
				timer = time.AfterFunc(100*time.Millisecond, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(100 * time.Millisecond)
			}
		case <-fire:
			timer = nil
			for pth := range pending {
				delete(pending, pth)
				if _, err := os.Stat(pth); err != nil {
					continue
				}
				if err := generateFile(pth); err != nil {
					slog.Error("generate failed", "error", err)
					continue
				}
				slog.Info("regenerated", "file", pth)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch error", "error", err)
		}
	}
}
