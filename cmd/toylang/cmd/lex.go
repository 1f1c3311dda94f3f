package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toylang/toylang/internal/lexer"
)

var (
	lexEval    string
	showPos    bool
	showType   bool
	onlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a toylang file or expression",
	Long: `Tokenize toylang source and print the resulting tokens, useful
for debugging the lexer.

Examples:
  toylang lex script.toy
  toylang lex -e "val x = 1i64" --show-type --show-pos
  toylang lex --only-errors script.toy`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token kind names")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "show only illegal tokens")
}

func lexScript(_ *cobra.Command, args []string) error {
	var input, filename string
	switch {
	case lexEval != "":
		input, filename = lexEval, "<eval>"
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		input, filename = string(content), args[0]
	default:
		return fmt.Errorf("either provide a file path or use -e for inline code")
	}

	if verbose {
		fmt.Printf("Tokenizing: %s (%d bytes)\n---\n", filename, len(input))
	}

	l := lexer.New(input, lexer.WithPreserveComments(true))
	tokenCount, errorCount := 0, 0
	for {
		tok := l.NextToken()
		if onlyErrors && tok.Kind != lexer.ILLEGAL {
			if tok.Kind == lexer.EOF {
				break
			}
			continue
		}

		tokenCount++
		if tok.Kind == lexer.ILLEGAL {
			errorCount++
		}
		printToken(tok)

		if tok.Kind == lexer.EOF {
			break
		}
	}

	if verbose {
		fmt.Printf("---\nTotal tokens: %d\n", tokenCount)
		if errorCount > 0 {
			fmt.Printf("Errors: %d\n", errorCount)
		}
	}

	if onlyErrors && errorCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errorCount)
	}
	return nil
}

func printToken(tok lexer.Token) {
	var out string
	if showType {
		out = fmt.Sprintf("[%-12s]", tok.Kind)
	}
	switch {
	case tok.Kind == lexer.EOF:
		out += " EOF"
	case tok.Kind == lexer.ILLEGAL:
		out += fmt.Sprintf(" ILLEGAL: %q", tok.Literal)
	case tok.Literal == "":
		out += fmt.Sprintf(" %s", tok.Kind)
	default:
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if showPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}
