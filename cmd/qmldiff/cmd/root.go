package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "qmldiff",
	Short: "QML diff/patch toolchain",
	Long: `qmldiff lexes, parses, and patches QML source trees using a small
diff DSL (AFFECT/TRAVERSE/INSERT/REPLACE/REBUILD/...), with an optional
identifier hashtab for distributing diffs against obfuscated/minified QML.

All real logic lives in the pkg/qmldiff library; this CLI is a thin driver.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
