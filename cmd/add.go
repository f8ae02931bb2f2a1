package cmd

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"notebook/b3"
	"notebook/sources"
)

var addCmd = &cobra.Command{
	Use:   "add <file-or-url>",
	Short: "Register an audio recording or a document",
	Long: `Register a source by local path or http(s) URL. The source id is derived
from the content, so adding the same bytes twice keeps a single source.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var (
	addKind string
	addName string
)

var documentExts = map[string]bool{
	".txt": true, ".text": true, ".md": true, ".markdown": true,
}

func init() {
	addCmd.Flags().StringVarP(&addKind, "kind", "k", "", "source kind: audio or document (default: guessed from the extension)")
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "display name (default: file name)")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	locator := args[0]
	if !isURL(locator) {
		abs, err := filepath.Abs(locator)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		locator = abs
	}

	kind := guessKind(locator)
	if addKind != "" {
		k, ok := sources.ParseKind(addKind)
		if !ok {
			return fmt.Errorf("unknown kind %q: want audio or document", addKind)
		}
		kind = k
	}

	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	data, err := a.fetcher.Fetch(ctx, locator)
	if err != nil {
		return err
	}
	id, err := b3.SourceID(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("fingerprint source: %w", err)
	}

	name := addName
	if name == "" {
		name = path.Base(filepath.ToSlash(locator))
	}

	src, err := a.repo.CreateSource(ctx, sources.Source{
		ID:      id,
		Name:    name,
		Kind:    kind,
		Locator: locator,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), src.ID)
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func guessKind(locator string) sources.Kind {
	if documentExts[strings.ToLower(path.Ext(locator))] {
		return sources.KindDocument
	}
	return sources.KindAudio
}
