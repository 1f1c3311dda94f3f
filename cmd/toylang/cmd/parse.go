package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/toylang/toylang/pkg/toylang"
)

var (
	parseExpr   string
	parseFormat string
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse toylang source and dump its AST pool",
	Long: `Parse toylang source code and print the resulting pooled AST,
without type-checking or executing it.

If no file is given, reads from stdin. Use -e to parse an inline
expression instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseExpr, "expression", "e", "", "parse an inline expression instead of reading a file")
	parseCmd.Flags().StringVar(&parseFormat, "format", "yaml", "AST dump format: yaml or json")
}

func runParse(_ *cobra.Command, args []string) error {
	var input string
	switch {
	case parseExpr != "":
		input = parseExpr
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input = string(data)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input = string(data)
	}

	e := toylang.New()
	prog, diags := e.Parse(input)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, "Parser errors:")
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.Format(input, !noColor))
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(diags))
	}

	return dumpProgram(os.Stdout, prog, parseFormat)
}
