package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <key>",
	Short: "Download one dataset now, ignoring cache freshness",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	key := args[0]
	if _, err := e.loader.FetchNow(cmd.Context(), key); err != nil {
		return err
	}

	res := e.loader.Status(key)
	fmt.Printf("%s: %s (as of %s)\n", key, res.Status, res.Date.Format("2006-01-02 15:04"))
	return nil
}
