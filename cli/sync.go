package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcinplaczek/app-polo/refdata"
)

var (
	syncForceFlag   bool
	syncMissingFlag = missingPolicyFlag{Value: "fetch"}

	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Bring every registered dataset up to date",
		Long: `Walk every registered dataset and make it available: fresh caches are
used as-is, missing or stale caches trigger a download. Datasets are
processed one at a time; a failure in one does not stop the others.

With --on-missing=notice, required downloads are listed instead of
performed, mirroring how the logger asks for consent before using the
network.`,
		RunE: runSync,
	}
)

func init() {
	syncCmd.Flags().BoolVarP(&syncForceFlag, "force", "f", false, "Refetch every dataset even when caches are fresh")
	syncCmd.Flags().Var(&syncMissingFlag, "on-missing", "What to do when a download is needed: fetch or notice")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	opts := refdata.LoadOptions{
		Force:        syncForceFlag,
		PreferNotice: syncMissingFlag.Value == "notice",
	}
	failures := e.loader.SyncAll(cmd.Context(), opts)

	for _, res := range e.loader.Statuses() {
		line := fmt.Sprintf("  %-20s %s", res.Key, res.Status)
		if res.Status == refdata.StatusLoaded && !res.Date.IsZero() {
			line += fmt.Sprintf(" (as of %s)", res.Date.Format("2006-01-02"))
		}
		fmt.Println(line)
	}

	if notices := e.board.Pending(); len(notices) > 0 {
		fmt.Println("\nPending downloads (re-run with --on-missing=fetch to perform them):")
		for _, n := range notices {
			fmt.Printf("  %s: %s\n", n.Key, n.Message)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d datasets failed to sync", len(failures), len(e.registry.Keys()))
	}
	return nil
}
