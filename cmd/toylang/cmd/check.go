package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toylang/toylang/pkg/toylang"
)

var checkEval string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Parse and type-check a toylang program without executing it",
	Long: `Run the parser and type checker over a toylang program and report
any diagnostics, without evaluating it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkEval, "eval", "e", "", "check inline code instead of reading from file")
	checkCmd.Flags().StringSliceVar(&importPaths, "import-path", nil, "additional directory to search for imported modules")
}

func runCheck(_ *cobra.Command, args []string) error {
	var source, filename string
	var err error
	switch {
	case checkEval != "":
		source, filename = checkEval, "<eval>"
	case len(args) == 1:
		var content []byte
		content, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		source, filename = string(content), args[0]
	default:
		return fmt.Errorf("either provide a file path or use -e for inline code")
	}

	e := buildEngine(filename, toylang.WithTypeCheck(true))
	_, diags := e.Compile(source)
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.Format(source, !noColor))
		}
		return fmt.Errorf("check failed with %d error(s)", len(diags))
	}

	if verbose {
		fmt.Println("no errors")
	}
	return nil
}
