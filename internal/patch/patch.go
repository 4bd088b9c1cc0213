// Package patch is the patch executor (spec §4.9), grounded on the original
// processor.rs's does_match/locate_in_tree/find_first_matching_child/
// insert_into_root/process. It walks a refcell.Tree under a cursor stack and
// applies one diffast.Change's instructions to it in place.
//
// The original's TreeRoot wraps either a TranslatedObjectRef or a
// TranslatedEnumChild behind Rc<RefCell<_>> so several potential roots can
// share and mutate the same underlying node during ASSERT/TRAVERSE
// candidate-set narrowing. A *qmlast.Object and *qmlast.EnumChild in Go are
// already shared, mutable references, so root holds the pointers directly
// with no wrapping.
package patch

import (
	"fmt"
	"strings"

	"github.com/asivery/qmldiff/internal/diffast"
	"github.com/asivery/qmldiff/internal/errs"
	"github.com/asivery/qmldiff/internal/qmlast"
	"github.com/asivery/qmldiff/internal/qmlemitter"
	"github.com/asivery/qmldiff/internal/qmlparser"
	"github.com/asivery/qmldiff/internal/qmltoken"
	"github.com/asivery/qmldiff/internal/refcell"
	"github.com/asivery/qmldiff/internal/suggest"
)

// root is one candidate match of a selector chain: either an Object subtree
// or, once a selector resolves onto an enum-valued child, that enum.
type root struct {
	object *qmlast.Object
	enum   *qmlast.EnumChild
}

func objectRoot(o *qmlast.Object) root { return root{object: o} }
func enumRoot(e *qmlast.EnumChild) root { return root{enum: e} }

// rootRef is current_root: the set of candidate roots a selector chain has
// narrowed to, plus an optional cursor set by LOCATE/REPLACE/INSERT.
type rootRef struct {
	roots  []root
	cursor *int
}

// Executor runs one Change's instructions against a translated tree.
type Executor struct {
	tree      *refcell.Tree
	file      string
	current   rootRef
	rootStack []rootRef
}

// NewExecutor starts execution with the file's own root object as the sole
// candidate -- not the synthetic VIRTUAL ROOT -- so that top-scope actions
// with no enclosing TRAVERSE (spec §8 S2/S3) reach the file's own children
// directly, the way a QML file (which always declares exactly one root
// item) is naturally addressed. TRAVERSE still descends from there the same
// way the original's process() descends from its wrapped root: a selector's
// object_name is matched against a nested object's own Name. The synthetic
// wrapper is only used as a fallback anchor for a translated tree that,
// atypically, does not hold exactly one top-level object.
func NewExecutor(tree *refcell.Tree, file string) *Executor {
	return &Executor{tree: tree, file: file, current: rootRef{roots: []root{objectRoot(initialRoot(tree.Root))}}}
}

func (ex *Executor) selectorErr(pos errs.Position, format string, args ...any) error {
	return errs.New(errs.SelectorError, ex.file, fmt.Sprintf(format, args...), pos, "")
}

func initialRoot(virtualRoot *qmlast.Object) *qmlast.Object {
	if len(virtualRoot.Children) == 1 {
		if nc, ok := virtualRoot.Children[0].(*qmlast.NestedObjectChild); ok {
			return nc.Object
		}
	}
	return virtualRoot
}

// Run applies every instruction of change in order, halting on the first
// error (the executor halts on first error within a change, per spec §4.9).
func Run(tree *refcell.Tree, change diffast.Change) error {
	ex := NewExecutor(tree, strings.Join(change.Targets, ","))
	for _, instr := range change.Instructions {
		if err := ex.step(instr); err != nil {
			return err
		}
	}
	return nil
}

func (ex *Executor) step(instr diffast.Instruction) error {
	switch v := instr.(type) {
	case diffast.TraverseInstr:
		return ex.doTraverse(v)
	case diffast.EndTraverseInstr:
		return ex.doEndTraverse()
	case diffast.AssertInstr:
		return ex.doAssert(v)
	case diffast.InsertInstr:
		return ex.doInsert(v)
	case diffast.LocateInstr:
		return ex.doLocate(v)
	case diffast.ReplaceInstr:
		return ex.doReplace(v)
	case diffast.RenameInstr:
		return ex.doRename(v)
	case diffast.RemoveInstr:
		return ex.doRemove(v)
	case diffast.ImportInstr:
		return ex.doImport(v)
	case diffast.RebuildInstr:
		return ex.doRebuild(v)
	case diffast.LoadInstr:
		return nil // resolved by the file discovery pass, never seen here
	case diffast.AllowMultipleInstr:
		// Spec leaves MULTIPLE's semantics undefined beyond its name and
		// says the executor treats it as "a fatal parse-level acknowledged
		// directive" -- it parses, and a change that reaches it stops with an
		// ExpansionError; instructions before it have already been applied.
		return errs.New(errs.ExpansionError, ex.file, "MULTIPLE is not implemented by the executor", v.Pos(), "")
	default:
		return fmt.Errorf("patch: instruction %T not supported by the executor", instr)
	}
}

func (ex *Executor) unambiguousRoot() (root, error) {
	if len(ex.current.roots) != 1 {
		return root{}, fmt.Errorf("patch: root must be unambiguous (currently %d elements matched)", len(ex.current.roots))
	}
	return ex.current.roots[0], nil
}

func (ex *Executor) doTraverse(v diffast.TraverseInstr) error {
	matched := locateInTree(ex.current.roots, v.Selector)
	if len(matched) == 0 {
		msg := suggest.ForError("cannot locate element in tree: "+formatLocation(v.Selector), lastSelectorName(v.Selector), childNames(ex.current.roots))
		return ex.selectorErr(v.Pos(), "%s", msg)
	}
	ex.rootStack = append(ex.rootStack, ex.current)
	ex.current = rootRef{roots: matched}
	return nil
}

func (ex *Executor) doEndTraverse() error {
	if len(ex.rootStack) == 0 {
		return fmt.Errorf("patch: cannot END TRAVERSE - end of scope")
	}
	ex.current = ex.rootStack[len(ex.rootStack)-1]
	ex.rootStack = ex.rootStack[:len(ex.rootStack)-1]
	return nil
}

func (ex *Executor) doAssert(v diffast.AssertInstr) error {
	tree := diffast.Location{v.Selector}
	kept := ex.current.roots[:0:0]
	for _, r := range ex.current.roots {
		if v.Selector.IsSimple() {
			if r.object != nil {
				found := false
				for _, c := range r.object.Children {
					if c.GetName() == v.Selector.Name {
						found = true
						break
					}
				}
				if found {
					kept = append(kept, r)
					continue
				}
			} else if r.enum != nil {
				found := false
				for _, val := range r.enum.Values {
					if val.Name == v.Selector.Name {
						found = true
						break
					}
				}
				if found {
					kept = append(kept, r)
					continue
				}
			}
		}
		if len(locateInTree([]root{r}, tree)) > 0 {
			kept = append(kept, r)
		}
	}
	ex.current.roots = kept
	if len(ex.current.roots) == 0 {
		return ex.selectorErr(v.Pos(), "ASSERTed all objects out of existence")
	}
	return nil
}

// doInsert is `INSERT …`: with no inline position it requires a cursor
// already set by a prior LOCATE (process()'s unambiguous_root_cursor_set!),
// matching the original and spec grammar. An inline `INSERT ALL|AFTER
// sel|BEFORE sel` (an enrichment parseInsert accepts beyond spec's grammar)
// resolves its own cursor instead of requiring one.
func (ex *Executor) doInsert(v diffast.InsertInstr) error {
	r, err := ex.unambiguousRoot()
	if err != nil {
		return err
	}
	var cursor int
	switch v.Position {
	case diffast.InsertDefault:
		if ex.current.cursor == nil {
			return fmt.Errorf("patch: cursor not set; use LOCATE or REPLACE first")
		}
		cursor = *ex.current.cursor
	case diffast.InsertAll:
		cursor = childCount(r)
	case diffast.InsertAfter, diffast.InsertBefore:
		idx, err := findFirstMatchingChild(r, diffast.Location{*v.Anchor})
		if err != nil {
			msg := suggest.ForError(err.Error(), v.Anchor.Name, childNames([]root{r}))
			return ex.selectorErr(v.Pos(), "%s", msg)
		}
		cursor = idx
		if v.Position == diffast.InsertAfter {
			cursor++
		}
	}
	if err := insertIntoRoot(&cursor, r, v.Body); err != nil {
		return errs.New(errs.ExpansionError, ex.file, err.Error(), v.Pos(), "")
	}
	ex.current.cursor = &cursor
	return nil
}

func (ex *Executor) doLocate(v diffast.LocateInstr) error {
	r, err := ex.unambiguousRoot()
	if err != nil {
		return err
	}
	var cursor int
	if v.All {
		if v.After {
			cursor = childCount(r)
		} else {
			cursor = 0
		}
	} else {
		idx, err := findFirstMatchingChild(r, v.Tree)
		if err != nil {
			msg := suggest.ForError(err.Error(), lastSelectorName(v.Tree), childNames([]root{r}))
			return ex.selectorErr(v.Pos(), "%s", msg)
		}
		cursor = idx
		if v.After {
			cursor++
		}
	}
	ex.current.cursor = &cursor
	return nil
}

func (ex *Executor) doReplace(v diffast.ReplaceInstr) error {
	r, err := ex.unambiguousRoot()
	if err != nil {
		return err
	}
	idx, err := findFirstMatchingChild(r, diffast.Location{v.Selector})
	if err != nil {
		msg := suggest.ForError(err.Error(), v.Selector.Name, childNames([]root{r}))
		return ex.selectorErr(v.Pos(), "%s", msg)
	}
	removeChildAt(r, idx)
	if err := insertIntoRoot(&idx, r, v.Body); err != nil {
		return errs.New(errs.ExpansionError, ex.file, err.Error(), v.Pos(), "")
	}
	ex.current.cursor = &idx
	return nil
}

func (ex *Executor) doRename(v diffast.RenameInstr) error {
	r, err := ex.unambiguousRoot()
	if err != nil {
		return err
	}
	if r.enum != nil {
		return ex.selectorErr(v.Pos(), "cannot RENAME a value within an enum")
	}
	idx, err := findFirstMatchingChild(r, diffast.Location{v.Selector})
	if err != nil {
		msg := suggest.ForError(err.Error(), v.Selector.Name, childNames([]root{r}))
		return ex.selectorErr(v.Pos(), "%s", msg)
	}
	if !r.object.Children[idx].SetName(v.NewName) {
		return fmt.Errorf("patch: child at index %d has no name to rename", idx)
	}
	next := idx + 1
	ex.current.cursor = &next
	return nil
}

func (ex *Executor) doRemove(v diffast.RemoveInstr) error {
	r, err := ex.unambiguousRoot()
	if err != nil {
		return err
	}
	if r.object != nil {
		kept := r.object.Children[:0:0]
		for _, c := range r.object.Children {
			if v.Selector.IsSimple() && c.GetName() == v.Selector.Name {
				continue
			}
			switch t := c.(type) {
			case *qmlast.NestedObjectChild:
				if doesMatch(t.Object, v.Selector, "") {
					continue
				}
			case *qmlast.ObjectAssignmentChild:
				if doesMatch(t.Value, v.Selector, t.Name) {
					continue
				}
			}
			kept = append(kept, c)
		}
		r.object.Children = kept
		return nil
	}
	if !v.Selector.IsSimple() {
		return ex.selectorErr(v.Pos(), "cannot do precision removal in an enum")
	}
	kept := r.enum.Values[:0:0]
	for _, val := range r.enum.Values {
		if val.Name != v.Selector.Name {
			kept = append(kept, val)
		}
	}
	r.enum.Values = kept
	return nil
}

func (ex *Executor) doImport(v diffast.ImportInstr) error {
	if len(ex.rootStack) > 0 {
		return fmt.Errorf("patch: cannot use IMPORT within TRAVERSE/SLOT scope")
	}
	ex.tree.Leftovers = append(ex.tree.Leftovers, &qmlast.Import{Path: v.Path, Version: v.Version, As: v.As})
	return nil
}

func childCount(r root) int {
	if r.object != nil {
		return len(r.object.Children)
	}
	return len(r.enum.Values)
}

func removeChildAt(r root, idx int) {
	if r.object != nil {
		r.object.Children = append(r.object.Children[:idx], r.object.Children[idx+1:]...)
		return
	}
	r.enum.Values = append(r.enum.Values[:idx], r.enum.Values[idx+1:]...)
}

// doesMatch is does_match: object's name and, if a named binding was
// requested, the property name it's attached under, must match, and every
// bracketed prop requirement (Exists/Equals/Contains) must hold.
func doesMatch(object *qmlast.Object, sel diffast.NodeSelector, namedAs string) bool {
	if sel.Name != object.Name {
		return false
	}
	if sel.Named != "" && sel.Named != namedAs {
		return false
	}
	for _, req := range sel.Props {
		idx := -1
		for i, c := range object.Children {
			if c.GetName() == req.Key {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		if req.Kind == diffast.PropExists {
			continue
		}
		value, ok := qmlast.StrValue(object.Children[idx])
		if !ok {
			return false
		}
		switch req.Kind {
		case diffast.PropEquals:
			if value != req.Value {
				return false
			}
		case diffast.PropContains:
			if !strings.Contains(value, req.Value) {
				return false
			}
		}
	}
	return true
}

// locateInTree is locate_in_tree: narrows a set of candidate roots by
// walking a selector chain one hop at a time.
func locateInTree(roots []root, tree diffast.Location) []root {
	potential := roots
	for _, sel := range tree {
		var next []root
		for _, r := range potential {
			if r.object == nil {
				continue
			}
			for _, c := range r.object.Children {
				switch t := c.(type) {
				case *qmlast.NestedObjectChild:
					if doesMatch(t.Object, sel, "") {
						next = append(next, objectRoot(t.Object))
					}
				case *qmlast.ObjectAssignmentChild:
					if doesMatch(t.Value, sel, t.Name) {
						next = append(next, objectRoot(t.Value))
					}
				case *qmlast.EnumChild:
					if sel.IsSimple() && sel.Name == t.Name {
						next = append(next, enumRoot(t))
					}
				}
			}
		}
		potential = next
	}
	return potential
}

// findFirstMatchingChild is find_first_matching_child: the index of the
// first child of root matching a single-selector tree, trying a plain name
// match before falling back to a full locate_in_tree probe (so a selector
// with property requirements can still match a directly-named child).
func findFirstMatchingChild(r root, tree diffast.Location) (int, error) {
	if r.enum != nil {
		if len(tree) == 1 && tree[0].IsSimple() {
			for i, val := range r.enum.Values {
				if val.Name == tree[0].Name {
					return i, nil
				}
			}
		}
		return -1, fmt.Errorf("patch: cannot LOCATE %s in enum %s", formatLocation(tree), r.enum.Name)
	}
	for i, c := range r.object.Children {
		if len(tree) == 1 && tree[0].IsSimple() && c.GetName() == tree[0].Name {
			return i, nil
		}
		var probe *qmlast.Object
		switch t := c.(type) {
		case *qmlast.NestedObjectChild:
			probe = t.Object
		case *qmlast.ObjectAssignmentChild:
			probe = t.Value
		default:
			continue
		}
		wrapper := &qmlast.Object{Children: []qmlast.ObjectChild{&qmlast.NestedObjectChild{Object: probe}}}
		if len(locateInTree([]root{objectRoot(wrapper)}, tree)) > 0 {
			return i, nil
		}
	}
	return -1, fmt.Errorf("patch: cannot LOCATE %s in %s", formatLocation(tree), r.object.Name)
}

// insertIntoRoot is insert_into_root: splices an Insertable's children into
// root at cursor. Every Insertable reaching the executor must already have
// been reduced to a literal Code token stream by slot/template expansion
// (internal/slots); it is wrapped in a synthetic enclosing object (or enum)
// and parsed, so the diff DSL never needs its own QML grammar.
func insertIntoRoot(cursor *int, r root, body diffast.Insertable) error {
	if body.Code == nil {
		return fmt.Errorf("patch: cannot insert an unresolved slot/template; run slot expansion first")
	}
	children, err := parseInsertedTokens(r, body.Code)
	if err != nil {
		return err
	}

	if r.enum != nil {
		if len(children) != 1 {
			return fmt.Errorf("patch: internal error inserting enum values")
		}
		enumChild, ok := children[0].(*qmlast.EnumChild)
		if !ok {
			return fmt.Errorf("patch: internal error inserting enum values")
		}
		r.enum.Values = append(r.enum.Values, enumChild.Values...)
		return nil
	}
	for _, c := range children {
		r.object.Children = append(r.object.Children[:*cursor], append([]qmlast.ObjectChild{c}, r.object.Children[*cursor:]...)...)
		*cursor++
	}
	return nil
}

func parseInsertedTokens(r root, code []qmltoken.Token) ([]qmlast.ObjectChild, error) {
	text := qmlemitter.EmitTokenStream(code)
	var wrapped string
	if r.enum != nil {
		wrapped = "Object { enum Enum { " + text + " } }"
	} else {
		wrapped = "Object { " + text + " }"
	}
	p := qmlparser.New(wrapped, "<insert>")
	parsed := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("patch: inserted code failed to parse: %s", errs[0].Message)
	}
	oe, ok := lastObjectElement(parsed)
	if !ok {
		return nil, fmt.Errorf("patch: internal error - inserted wrapper did not parse to an object")
	}
	return oe.Object.Children, nil
}

func lastObjectElement(tree qmlast.Tree) (*qmlast.ObjectElement, bool) {
	for i := len(tree) - 1; i >= 0; i-- {
		if oe, ok := tree[i].(*qmlast.ObjectElement); ok {
			return oe, true
		}
	}
	return nil, false
}

// lastSelectorName is the name a failed locate should be fuzzy-matched
// against: the final hop of the chain, since earlier hops already resolved.
func lastSelectorName(tree diffast.Location) string {
	if len(tree) == 0 {
		return ""
	}
	return tree[len(tree)-1].Name
}

// childNames collects every name visible one hop below roots, as candidates
// for a suggest.Closest lookup on a failed locate.
func childNames(roots []root) []string {
	var names []string
	for _, r := range roots {
		if r.object != nil {
			for _, c := range r.object.Children {
				if n := c.GetName(); n != "" {
					names = append(names, n)
				}
			}
		}
		if r.enum != nil {
			for _, val := range r.enum.Values {
				names = append(names, val.Name)
			}
		}
	}
	return names
}

func formatLocation(tree diffast.Location) string {
	s := ""
	for i, sel := range tree {
		if i > 0 {
			s += " > "
		}
		s += sel.Name
	}
	return s
}
