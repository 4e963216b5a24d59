package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Delete one dataset's cache file and in-memory data",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	key := args[0]
	if err := e.loader.Remove(cmd.Context(), key); err != nil {
		return err
	}

	fmt.Printf("%s: removed\n", key)
	return nil
}
