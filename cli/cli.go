package cli

import (
	"fmt"

	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"

	"github.com/marcinplaczek/app-polo/extensions"
	"github.com/marcinplaczek/app-polo/refdata"
	"github.com/marcinplaczek/app-polo/refdata/store"
)

var (
	// Command line flags
	dataDirFlag string

	// Root command
	rootCmd = &cobra.Command{
		Use:           "polo-data",
		Short:         "Manage the logger's reference datasets",
		SilenceErrors: true,
		Long: `polo-data maintains the external reference datasets the logger uses to
validate and enrich contacts: award program directories (POTA parks, WWFF
references) and call sign note files.

Datasets are cached on disk and refreshed when they exceed their maximum
age. Run "polo-data sync" to bring everything up to date.`,
	}

	// Version information
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Version command
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print detailed version information about polo-data",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("polo-data version %s\n", Version)
			fmt.Printf("  commit: %s\n", Commit)
			fmt.Printf("  built:  %s\n", Date)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDirFlag, "data-dir", "d", "", "Directory holding cached dataset files (default: the user cache dir)")
	rootCmd.AddCommand(versionCmd)
}

// Run executes the main CLI functionality
func Run() error {
	return rootCmd.Execute()
}

// env bundles the pieces every subcommand needs.
type env struct {
	registry *refdata.Registry
	loader   *refdata.Loader
	board    *refdata.Noticeboard
	store    *store.Store
	ext      *extensions.Set
}

// newEnv builds the registry, store, noticeboard and loader shared by
// subcommands, with the built-in extensions registered.
func newEnv() (*env, error) {
	dir := dataDirFlag
	if dir == "" {
		dir = store.DefaultDir()
	}

	st := store.New(dir)
	reg := refdata.NewRegistry()
	ext := extensions.NewSet()
	if err := ext.RegisterAll(reg); err != nil {
		return nil, failure.Wrap(err)
	}

	board := refdata.NewNoticeboard()
	return &env{
		registry: reg,
		loader:   refdata.NewLoader(reg, st, board),
		board:    board,
		store:    st,
		ext:      ext,
	}, nil
}
