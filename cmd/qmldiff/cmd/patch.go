package cmd

import (
	"fmt"
	"os"

	"github.com/asivery/qmldiff/internal/manifest"
	"github.com/asivery/qmldiff/pkg/qmldiff"
	"github.com/spf13/cobra"
)

var (
	patchVersion  string
	patchOutput   string
	patchManifest string
)

var patchCmd = &cobra.Command{
	Use:   "patch <root> <file>",
	Short: "Build changes from a diff root and apply them to a single QML file",
	Long: `Scans root for *.qmd change files (and a sibling "hashtab" file, if
present), then processes file against every matching change and prints the
patched result.`,
	Args: cobra.ExactArgs(2),
	RunE: runPatch,
}

func init() {
	rootCmd.AddCommand(patchCmd)
	patchCmd.Flags().StringVar(&patchVersion, "version", "", "pin the current version for VERSIONS guards and hashtab version checks")
	patchCmd.Flags().StringVarP(&patchOutput, "output", "o", "", "output file (default: stdout)")
	patchCmd.Flags().StringVar(&patchManifest, "manifest", "", "JSON run manifest; overrides root, --version and --output when given")
}

func runPatch(cmd *cobra.Command, args []string) error {
	root, file := args[0], args[1]
	version := patchVersion
	output := patchOutput

	if patchManifest != "" {
		data, err := os.ReadFile(patchManifest)
		if err != nil {
			return fmt.Errorf("failed to read manifest %s: %w", patchManifest, err)
		}
		m, err := manifest.Load(data)
		if err != nil {
			return fmt.Errorf("invalid manifest %s: %w", patchManifest, err)
		}
		root = m.Root
		if m.Version != "" {
			version = m.Version
		}
		if m.Output != "" {
			output = m.Output
		}
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", file, err)
	}

	e := qmldiff.New()
	if version != "" {
		e.SetVersion(version)
	}

	n, err := e.BuildChangeFiles(root)
	if err != nil {
		return fmt.Errorf("failed to build changes from %s: %w", root, err)
	}
	fmt.Fprintf(os.Stderr, "[qmldiff] loaded %d change(s) from %s\n", n, root)

	result, applied, err := e.ProcessFile(file, string(data))
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", file, err)
	}
	if !applied {
		fmt.Fprintf(os.Stderr, "[qmldiff] no change in %s targets %s\n", root, file)
		result = string(data)
	}

	if e.Errors().HasErrors() {
		e.Errors().PrintTo(os.Stderr)
	}

	if output == "" {
		fmt.Print(result)
		return nil
	}
	if err := os.WriteFile(output, []byte(result), 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", output, err)
	}
	fmt.Fprintf(os.Stderr, "[qmldiff] wrote %s\n", output)
	return nil
}
