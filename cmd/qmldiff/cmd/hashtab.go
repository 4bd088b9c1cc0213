package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/asivery/qmldiff/internal/hashtab"
	"github.com/asivery/qmldiff/pkg/qmldiff"
	"github.com/spf13/cobra"
)

var (
	hashtabBuildOutput string
	hashtabBuildSuffix string
)

var hashtabCmd = &cobra.Command{
	Use:   "hashtab",
	Short: "Build, inspect, or verify a hashtab file",
}

var hashtabBuildCmd = &cobra.Command{
	Use:   "build <root>",
	Short: "Walk every QML file under root and collect identifiers into a hashtab",
	Args:  cobra.ExactArgs(1),
	RunE:  runHashtabBuild,
}

var hashtabDumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print every (hash, identifier) entry in a hashtab file",
	Args:  cobra.ExactArgs(1),
	RunE:  runHashtabDump,
}

var hashtabVerifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Check a hashtab file's optional checksum trailer",
	Args:  cobra.ExactArgs(1),
	RunE:  runHashtabVerify,
}

func init() {
	rootCmd.AddCommand(hashtabCmd)
	hashtabCmd.AddCommand(hashtabBuildCmd, hashtabDumpCmd, hashtabVerifyCmd)

	hashtabBuildCmd.Flags().StringVarP(&hashtabBuildOutput, "output", "o", "hashtab", "path to write the built hashtab to")
	hashtabBuildCmd.Flags().StringVar(&hashtabBuildSuffix, "suffix", ".qml", "file suffix to scan for")
}

func runHashtabBuild(cmd *cobra.Command, args []string) error {
	root := args[0]
	e := qmldiff.New()
	e.EnableHashtabBuild(hashtabBuildOutput)

	var count int
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, hashtabBuildSuffix) {
			return nil
		}
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		if _, _, perr := e.ProcessFile(path, string(data)); perr != nil {
			fmt.Fprintf(os.Stderr, "[qmldiff] %s: %v\n", path, perr)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", root, err)
	}

	f, err := os.Create(hashtabBuildOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", hashtabBuildOutput, err)
	}
	defer f.Close()
	if err := e.SaveHashtab(f); err != nil {
		return fmt.Errorf("failed to save hashtab: %w", err)
	}

	fmt.Fprintf(os.Stderr, "[qmldiff] collected identifiers from %d file(s), wrote %s\n", count, hashtabBuildOutput)
	return nil
}

func runHashtabDump(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	tab, err := hashtab.Load(f, "", func(string, string) bool { return true })
	if err != nil {
		return fmt.Errorf("failed to load hashtab: %w", err)
	}

	type entry struct {
		hash  uint64
		value string
	}
	var entries []entry
	tab.Each(func(h uint64, v string) { entries = append(entries, entry{h, v}) })
	sort.Slice(entries, func(i, j int) bool { return entries[i].hash < entries[j].hash })

	if tab.Version != "" {
		fmt.Printf("version: %s\n", tab.Version)
	}
	for _, e := range entries {
		fmt.Printf("%d\t%s\n", e.hash, e.value)
	}
	fmt.Fprintf(os.Stderr, "[qmldiff] %d entries\n", len(entries))
	return nil
}

func runHashtabVerify(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	ok, err := hashtab.Verify(f)
	if err != nil {
		return fmt.Errorf("checksum mismatch: %w", err)
	}
	if ok {
		fmt.Println("checksum OK")
	} else {
		fmt.Println("no checksum trailer present")
	}
	return nil
}
