package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose  bool
	noColor  bool
	cfgFile  string
)

var rootCmd = &cobra.Command{
	Use:   "toylang",
	Short: "toylang compiler and interpreter",
	Long: `toylang is a small, statically-typed, expression-oriented
scripting language: structs and impls with operator overloads, generics,
fixed-size arrays and dictionaries, and a family of __builtin_* memory
intrinsics over a fake heap.`,
}

// Execute runs the root command, returning any error from the selected
// subcommand's RunE.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostic output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "toylang.yaml", "path to an optional project config file")

	cobra.OnInitialize(func() {
		if noColor {
			color.NoColor = true
		}
	})
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
