package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete sources with their cached transcripts, summaries and text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	for _, id := range args {
		if err := a.svc.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted", id)
	}
	return nil
}
