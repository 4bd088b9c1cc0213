package cmd

import (
	"fmt"
	"os"

	"github.com/asivery/qmldiff/internal/qmllexer"
	"github.com/asivery/qmldiff/internal/qmltoken"
	"github.com/spf13/cobra"
)

var (
	lexShowPos  bool
	lexShowType bool
)

var lexCmd = &cobra.Command{
	Use:   "lex <file>",
	Short: "Tokenize a QML file and print the resulting tokens",
	Args:  cobra.ExactArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexShowType, "show-type", false, "show token type names")
}

func runLex(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	l := qmllexer.New(string(data))
	for {
		tok := l.Next()
		printQMLToken(tok)
		if tok.Type == qmltoken.EOF {
			break
		}
	}
	return nil
}

func printQMLToken(tok qmltoken.Token) {
	var out string
	if lexShowType {
		out = fmt.Sprintf("[%-16s]", tok.Type)
	}
	if tok.Type == qmltoken.EOF {
		out += " EOF"
	} else {
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if lexShowPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}
