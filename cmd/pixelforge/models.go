package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type setupFunc func(cmd *cobra.Command) (*app, error)

func newModelsCmd(setup setupFunc) *cobra.Command {
	cmd := &cobra.Command{Use: "models", Short: "Manage downloaded models", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("models requires a subcommand: list|pull|rm")
	}}

	list := &cobra.Command{Use: "list", Aliases: []string{"ls"}, Short: "List catalog models and whether they are installed", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		st, err := a.svc.ModelsStatus()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tINSTALLED\tSIZE\tNAME")
		for _, m := range st {
			fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", m.ID, m.Installed, humanBytes(m.SizeBytes), m.Name)
		}
		return tw.Flush()
	}}

	pull := &cobra.Command{Use: "pull <id>", Short: "Download and verify a model", Example: "  pixelforge models pull u2net", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		id := args[0]
		last := -1
		err = a.svc.PullModel(cmd.Context(), id, func(downloaded, total uint64) {
			pct := 0
			if total > 0 {
				pct = int(downloaded * 100 / total)
			}
			if pct != last {
				last = pct
				fmt.Fprintf(cmd.ErrOrStderr(), "\rpulling %s %3d%% (%s/%s)", id, pct, humanBytes(downloaded), humanBytes(total))
			}
		})
		if last >= 0 {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ready\n", id)
		return nil
	}}

	rm := &cobra.Command{Use: "rm <id>", Aliases: []string{"delete"}, Short: "Delete a downloaded model", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.svc.DeleteModel(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s removed\n", args[0])
		return nil
	}}

	cmd.AddCommand(list, pull, rm)
	return cmd
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
