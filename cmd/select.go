package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"notebook/sources"
	"notebook/view"
)

var selectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Process a source if needed and print its transcript, summary or text",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	observer := func(s sources.Snapshot) {
		if quiet {
			return
		}
		fmt.Fprintln(stderr, view.DimStyle.Render(fmt.Sprintf("%s: %s", s.SourceID, s.Stage)))
	}

	a, err := openApp(ctx, observer)
	if err != nil {
		return err
	}
	defer a.close()

	src, err := a.lookup(cmd, args[0])
	if err != nil {
		return err
	}

	a.svc.Select(ctx, src)
	a.svc.Wait()

	entry, _ := a.cache.Get(src.ID)
	printEntry(cmd.OutOrStdout(), src, entry)
	return nil
}

func (a *app) lookup(cmd *cobra.Command, id string) (sources.Source, error) {
	src, err := a.repo.GetSource(cmd.Context(), id)
	if errors.Is(err, sources.ErrNotFound) {
		return sources.Source{}, fmt.Errorf("no source with id %q; see `notebook list`", id)
	}
	return src, err
}

func printEntry(w io.Writer, src sources.Source, e sources.CacheEntry) {
	section := func(title string, a *sources.Artifact) {
		fmt.Fprintln(w, view.TitleStyle.Render(title))
		if a == nil {
			fmt.Fprintln(w, view.DimStyle.Render("(not available)"))
		} else {
			fmt.Fprintln(w, a.Display())
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s (%s)\n\n", src.Name, src.Kind)
	if src.Kind == sources.KindDocument {
		section("Text", e.ExtractedText)
		return
	}
	section("Transcript", e.Transcript)
	section("Summary", e.Summary)
}
