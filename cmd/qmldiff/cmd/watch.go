package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/asivery/qmldiff/internal/watcher"
	"github.com/asivery/qmldiff/pkg/qmldiff"
	"github.com/spf13/cobra"
)

var watchVersion string

var watchCmd = &cobra.Command{
	Use:   "watch <root>",
	Short: "Watch a diff root and rebuild its change list on every *.qmd edit",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchVersion, "version", "", "pin the current version for VERSIONS guards and hashtab version checks")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := args[0]

	// Each rebuild starts from a fresh Engine rather than reusing one: the
	// accumulated change list is write-once per spec §6 (AddExternalDiff
	// refuses once post-init latches), so a long-lived watch loop needs a
	// brand new Engine per pass instead of appending to the same one.
	rebuild := func(reason string) {
		ne := qmldiff.New()
		if watchVersion != "" {
			ne.SetVersion(watchVersion)
		}
		n, err := ne.BuildChangeFiles(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[qmldiff] rebuild failed: %v\n", err)
			return
		}
		fmt.Fprintf(os.Stderr, "[qmldiff] %s: rebuilt, %d change(s) loaded\n", reason, n)
	}
	rebuild("initial")

	w, err := watcher.New(root, ".qmd")
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	stop := make(chan struct{})
	go func() {
		<-sig
		close(stop)
	}()

	fmt.Fprintf(os.Stderr, "[qmldiff] watching %s for *.qmd changes (Ctrl+C to stop)\n", root)
	return w.Run(stop, func(path string) {
		rebuild(path)
	})
}
