package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"notebook/highlight"
	"notebook/query"
	"notebook/sources"
	"notebook/view"
)

var askCmd = &cobra.Command{
	Use:   "ask <id> <question>",
	Short: "Ask a question about a source and highlight the answer in every view",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	src, err := a.lookup(cmd, args[0])
	if err != nil {
		return err
	}

	if stage, err := a.svc.Run(ctx, src); err != nil && !errors.Is(err, sources.ErrInFlight) {
		slog.Warn("pipeline failed", "source", src.ID, "stage", stage, "err", err)
	}

	entry, _ := a.cache.Get(src.ID)
	text, ok := entry.ContextText(src.Kind)
	if !ok {
		return query.ErrNoContext
	}

	ans, err := a.queries.Ask(ctx, strings.Join(args[1:], " "), text)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ans.Text)
	fmt.Fprintln(out)

	ranked := ans.Highlights.Ranked()
	if len(ranked) == 0 {
		fmt.Fprintln(out, view.DimStyle.Render("no highlights"))
		return nil
	}

	fmt.Fprintln(out, view.TitleStyle.Render("Highlights"))
	for _, h := range ranked {
		fmt.Fprintf(out, "  [%d] %s (%s, %.0f%%)\n", h.Index, h.Text, h.Origin, h.Confidence*100)
	}
	fmt.Fprintln(out)

	views := a.views(src, entry)
	defer func() {
		for _, s := range views {
			s.sub.Unsubscribe()
		}
	}()

	a.bus.Publish(highlight.Broadcast{Sentence: ranked[0].Text})
	for _, s := range views {
		m := s.model
		if msg := view.Listen(s.sub)(); msg != nil {
			updated, _ := m.Update(msg)
			m = updated.(view.Model)
		}
		fmt.Fprintln(out, m.View())
	}
	return nil
}

type subscribedView struct {
	model view.Model
	sub   *highlight.Subscription
}

type titledText struct {
	title string
	text  *sources.Artifact
}

// views builds one subscribed view per text rendered for src.
func (a *app) views(src sources.Source, e sources.CacheEntry) []subscribedView {
	texts := []titledText{{"Transcript", e.Transcript}, {"Summary", e.Summary}}
	if src.Kind == sources.KindDocument {
		texts = []titledText{{"Text", e.ExtractedText}}
	}

	var res []subscribedView
	for _, t := range texts {
		if !t.text.OK() {
			continue
		}
		sub := a.bus.Subscribe()
		res = append(res, subscribedView{
			model: view.New(t.title, t.text.Text, a.seg, sub),
			sub:   sub,
		})
	}
	return res
}
