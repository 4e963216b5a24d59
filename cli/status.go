package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show each dataset's cache state on disk",
	Long: `List every registered dataset with the age and staleness of its cache
file. Output is a table on a terminal and tab-separated when piped.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	tty := isatty.IsTerminal(os.Stdout.Fd())
	if tty {
		fmt.Printf("%-20s %-28s %-12s %s\n", "KEY", "NAME", "CACHED", "STATE")
	}

	for _, def := range e.registry.List() {
		cached := "-"
		state := "missing"

		if env, err := e.store.Read(def.Key, def.Version); err == nil {
			cached = env.Date.Format("2006-01-02")
			age := time.Since(env.Date)
			if age > def.MaxAge() {
				state = fmt.Sprintf("stale (%dd old)", int(age.Hours()/24))
			} else {
				state = "fresh"
			}
		}

		if tty {
			fmt.Printf("%-20s %-28s %-12s %s\n", def.Key, def.Name, cached, state)
		} else {
			fmt.Println(strings.Join([]string{def.Key, def.Name, cached, state}, "\t"))
		}
	}
	return nil
}
