package cmd

import (
	"fmt"
	"os"

	"github.com/asivery/qmldiff/internal/hashtab"
	"github.com/spf13/cobra"
)

var (
	rulesHashtabIn  string
	rulesHashtabOut string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Compile and apply hashtab-derivation rules",
}

var rulesCompileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a hashtab-derivation rules file and apply it to a hashtab",
	Long: `Compiles file as a hashtab-derivation rules program and runs it against
the hashtab named by --hashtab (created fresh if it doesn't exist), writing
the result to --output (default: overwrite --hashtab).`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesCompile,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesCompileCmd)

	rulesCompileCmd.Flags().StringVar(&rulesHashtabIn, "hashtab", "", "hashtab file to apply the rules to (optional)")
	rulesCompileCmd.Flags().StringVarP(&rulesHashtabOut, "output", "o", "", "output hashtab path (default: --hashtab)")
}

func runRulesCompile(cmd *cobra.Command, args []string) error {
	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	rules, err := hashtab.CompileRules(string(text))
	if err != nil {
		return fmt.Errorf("failed to compile rules: %w", err)
	}

	tab := hashtab.New()
	if rulesHashtabIn != "" {
		if f, openErr := os.Open(rulesHashtabIn); openErr == nil {
			tab, err = hashtab.Load(f, "", func(string, string) bool { return true })
			f.Close()
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", rulesHashtabIn, err)
			}
		} else if !os.IsNotExist(openErr) {
			return fmt.Errorf("failed to open %s: %w", rulesHashtabIn, openErr)
		}
	}

	rules.Process(tab, func(msg string) {
		fmt.Fprintf(os.Stderr, "[qmldiff] %s\n", msg)
	})

	out := rulesHashtabOut
	if out == "" {
		out = rulesHashtabIn
	}
	if out == "" {
		fmt.Fprintf(os.Stderr, "[qmldiff] rules compiled, %d entries produced (no --hashtab/--output given, nothing written)\n", tab.Len())
		return nil
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()
	if err := tab.Save(f); err != nil {
		return fmt.Errorf("failed to save hashtab: %w", err)
	}
	fmt.Fprintf(os.Stderr, "[qmldiff] wrote %d entries to %s\n", tab.Len(), out)
	return nil
}
