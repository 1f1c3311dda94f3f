package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/toylang/toylang/pkg/toylang"
)

var (
	evalExpr    string
	dumpAST     bool
	dumpFormat  string
	trace       bool
	typeCheck   bool
	importPaths []string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a toylang program or inline expression",
	Long: `Parse, type-check, and execute a toylang program.

Examples:
  # Run a script file
  toylang run script.toy

  # Evaluate inline code
  toylang run -e "fn main() -> i64 { 40 + 2 }"

  # Run with AST dump and execution trace
  toylang run --dump-ast --trace script.toy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "run inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST before executing")
	runCmd.Flags().StringVar(&dumpFormat, "format", "yaml", "AST dump format: yaml or json")
	runCmd.Flags().BoolVar(&trace, "trace", false, "trace statement evaluation")
	runCmd.Flags().BoolVar(&typeCheck, "type-check", true, "type-check before executing")
	runCmd.Flags().StringSliceVar(&importPaths, "import-path", nil, "additional directory to search for imported modules")
}

func readSource(args []string) (source, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, rerr := os.ReadFile(args[0])
		if rerr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], rerr)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline code")
}

func buildEngine(filename string, opts ...toylang.Option) *toylang.Engine {
	root := "."
	if filename != "<eval>" && filename != "" {
		root = filepath.Dir(filename)
	}
	if cfg, err := toylang.LoadConfig(cfgFile); err == nil {
		opts = append(cfg.Options(), opts...)
		if cfg.PackageRoot != "" {
			root = cfg.PackageRoot
		}
		importPaths = append(importPaths, cfg.ImportPaths...)
	}
	opts = append(opts, toylang.WithSourceLoader(newFSLoader(root, importPaths)))
	opts = append(opts, toylang.WithTypeCheck(typeCheck))
	if trace {
		opts = append(opts, toylang.WithTrace(os.Stderr))
	}
	return toylang.New(opts...)
}

func runScript(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	e := buildEngine(filename)
	prog, diags := e.Compile(source)
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.Format(source, !noColor))
		}
		return fmt.Errorf("compilation failed with %d error(s)", len(diags))
	}

	if dumpAST {
		if err := dumpProgram(os.Stdout, prog, dumpFormat); err != nil {
			return err
		}
	}

	if !typeCheck {
		if verbose {
			fmt.Fprintln(os.Stderr, "type checking disabled, not executing")
		}
		return nil
	}

	result, rdiag := e.Execute(prog)
	if rdiag != nil {
		fmt.Fprintln(os.Stderr, rdiag.Format(source, !noColor))
		return fmt.Errorf("execution failed")
	}

	fmt.Println(result.String())
	return nil
}

func dumpProgram(w io.Writer, prog *toylang.Program, format string) error {
	switch format {
	case "json":
		out, err := prog.DumpJSON()
		if err != nil {
			return fmt.Errorf("failed to dump AST as JSON: %w", err)
		}
		fmt.Fprintln(w, out)
	default:
		out, err := prog.DumpYAML()
		if err != nil {
			return fmt.Errorf("failed to dump AST as YAML: %w", err)
		}
		fmt.Fprint(w, out)
	}
	return nil
}
