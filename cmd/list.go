package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"notebook/sources"
	"notebook/view"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered sources and their processing state",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	srcs, err := a.repo.ListSources(ctx)
	if err != nil {
		return err
	}
	if len(srcs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), view.DimStyle.Render("no sources"))
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(view.DimStyle).
		Headers("ID", "KIND", "STATUS", "ADDED", "NAME")
	for _, s := range srcs {
		t.Row(s.ID, string(s.Kind), a.status(s), s.CreatedAt.Format("2006-01-02 15:04"), s.Name)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

func (a *app) status(src sources.Source) string {
	if a.tracker.HasProcessed(src.ID) {
		return "processed"
	}
	e, ok := a.cache.Get(src.ID)
	if !ok {
		return "new"
	}
	if src.Kind == sources.KindDocument {
		if e.ExtractedText != nil {
			return "partial"
		}
		return "new"
	}
	if e.Transcript.OK() {
		return "transcribed"
	}
	return "new"
}
