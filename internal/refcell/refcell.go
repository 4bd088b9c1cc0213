// Package refcell gives the patch executor a single root to recurse from,
// grounded on the original refcell_translation.rs's translate_from_root /
// untranslate_from_root: every top-level QML object is wrapped as a child
// of one synthetic "VIRTUAL ROOT" object, and imports/pragmas are kept
// aside as leftovers to be reattached unchanged on the way out.
//
// The rest of refcell_translation.rs -- TranslatedObjectRef as
// Rc<RefCell<TranslatedObject>>, deep_clone, translate_object_child /
// untranslate_object_child mirroring every ObjectChild variant -- existed
// only to let multiple owners share and mutate one Object graph under
// Rust's borrow checker. A *qmlast.Object in Go already is a shared,
// mutable reference with no borrow-checking to satisfy, and
// qmlast.Object.Clone() gives a real deep copy wherever one is wanted, so
// none of that machinery is ported: translating an ObjectChild to a Translated*
// variant and back would just be copying data through an identical shape.
package refcell

import "github.com/asivery/qmldiff/internal/qmlast"

const (
	VirtualRootName     = "VIRTUAL ROOT"
	VirtualRootFullName = "!<VIRTUAL ROOT>!"
)

// Tree is a parsed file split into the part the patch executor walks (Root)
// and the part it leaves untouched (Leftovers: imports, pragmas).
type Tree struct {
	Root      *qmlast.Object
	Leftovers []qmlast.TreeElement
}

// Translate wraps every root-level object under one synthetic root so
// TRAVERSE/LOCATE/REBUILD always have exactly one subtree to descend into.
func Translate(tree qmlast.Tree) *Tree {
	root := &qmlast.Object{Name: VirtualRootName, FullName: VirtualRootFullName}
	var leftovers []qmlast.TreeElement
	for _, el := range tree {
		if oe, ok := el.(*qmlast.ObjectElement); ok {
			root.Children = append(root.Children, &qmlast.NestedObjectChild{Object: oe.Object})
			continue
		}
		leftovers = append(leftovers, el)
	}
	return &Tree{Root: root, Leftovers: leftovers}
}

// Untranslate reverses Translate: leftovers come back first (as the
// original order only ever matters between imports/pragmas and the objects
// that follow them, which the emitter already renders in declaration
// order), then every surviving root-level object.
func Untranslate(t *Tree) qmlast.Tree {
	out := make(qmlast.Tree, 0, len(t.Leftovers)+len(t.Root.Children))
	out = append(out, t.Leftovers...)
	for _, c := range t.Root.Children {
		if nc, ok := c.(*qmlast.NestedObjectChild); ok {
			out = append(out, &qmlast.ObjectElement{Object: nc.Object})
		}
	}
	return out
}
