package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/asivery/qmldiff/internal/qmlast"
	"github.com/asivery/qmldiff/internal/qmlparser"
	"github.com/spf13/cobra"
)

var parseDumpAST bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse QML source and display the AST",
	Long: `Parse QML source code and display its object tree.

If no file is provided, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full tree structure instead of listing each root object with its child count")
}

func runParse(cmd *cobra.Command, args []string) error {
	var input string
	filename := "<stdin>"
	if len(args) > 0 {
		filename = args[0]
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input = string(data)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input = string(data)
	}

	p := qmlparser.New(input, filename)
	tree := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		fmt.Fprintln(os.Stderr, "Parse errors:")
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  %s\n", e.Format())
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	if parseDumpAST {
		for _, el := range tree {
			dumpElement(el, 0)
		}
		return nil
	}

	for _, el := range tree {
		if obj, ok := el.(*qmlast.ObjectElement); ok {
			fmt.Println(dumpObjectName(obj.Object))
		}
	}
	return nil
}

func indent(n int) string { return strings.Repeat("  ", n) }

func dumpObjectName(o *qmlast.Object) string {
	if o.Name != "" {
		return o.Name + " (" + fmt.Sprint(len(o.Children)) + " children)"
	}
	return fmt.Sprintf("<anonymous object> (%d children)", len(o.Children))
}

func dumpElement(el qmlast.TreeElement, depth int) {
	switch v := el.(type) {
	case *qmlast.Import:
		fmt.Printf("%sImport %s %s\n", indent(depth), v.Path, v.Version)
	case *qmlast.Pragma:
		fmt.Printf("%sPragma %s\n", indent(depth), v.Name)
	case *qmlast.ObjectElement:
		dumpObject(v.Object, depth)
	}
}

func dumpObject(o *qmlast.Object, depth int) {
	fmt.Printf("%sObject %s\n", indent(depth), dumpObjectName(o))
	for _, c := range o.Children {
		dumpChild(c, depth+1)
	}
}

func dumpChild(c qmlast.ObjectChild, depth int) {
	switch v := c.(type) {
	case *qmlast.PropertyChild:
		fmt.Printf("%sProperty %s\n", indent(depth), v.Name)
	case *qmlast.AssignmentChild:
		fmt.Printf("%sAssignment %s\n", indent(depth), v.Name)
	case *qmlast.ObjectPropertyChild:
		fmt.Printf("%sObjectProperty %s\n", indent(depth), v.Name)
	case *qmlast.ObjectAssignmentChild:
		fmt.Printf("%sObjectAssignment %s\n", indent(depth), v.Name)
		dumpObject(v.Object, depth+1)
	case *qmlast.NestedObjectChild:
		dumpObject(v.Object, depth)
	case *qmlast.FunctionChild:
		fmt.Printf("%sFunction %s(%d params)\n", indent(depth), v.Name, len(v.Params))
	case *qmlast.SignalChild:
		fmt.Printf("%sSignal %s\n", indent(depth), v.Name)
	case *qmlast.EnumChild:
		fmt.Printf("%sEnum %s (%d values)\n", indent(depth), v.Name, len(v.Values))
	case *qmlast.ComponentChild:
		fmt.Printf("%sComponent %s\n", indent(depth), v.Name)
		dumpObject(v.Object, depth+1)
	default:
		fmt.Printf("%s%T\n", indent(depth), c)
	}
}
