package qmlast

import "github.com/asivery/qmldiff/internal/qmltoken"

// Visitor is called once per ObjectChild (and once for the root Object
// itself via VisitObject) while walking a tree. Returning false from
// VisitChild stops descent into that child's own nested object, if any.
type Visitor interface {
	VisitObject(o *Object)
	VisitChild(c ObjectChild) bool
}

// Walk performs a depth-first traversal of obj, grounded on the original's
// update_hashtab_from_tree recursion shape (hashtab.rs): every object name,
// every child's declared name, and every nested object is visited.
func Walk(obj *Object, v Visitor) {
	v.VisitObject(obj)
	for _, c := range obj.Children {
		if !v.VisitChild(c) {
			continue
		}
		switch t := c.(type) {
		case *NestedObjectChild:
			Walk(t.Object, v)
		case *ObjectAssignmentChild:
			Walk(t.Value, v)
		case *ObjectPropertyChild:
			Walk(t.DefaultValue, v)
		case *ComponentChild:
			Walk(t.Object, v)
		}
	}
}

// WalkTree walks every ObjectElement at the top of a Tree.
func WalkTree(tree Tree, v Visitor) {
	for _, el := range tree {
		if oe, ok := el.(*ObjectElement); ok {
			Walk(oe.Object, v)
		}
	}
}

// Clone deep-copies an Object and everything beneath it. Go's GC makes the
// Rc<RefCell<_>> deep_clone dance from the original's refcell_translation.rs
// unnecessary; a Clone can be edited without aliasing the original.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	children := make([]ObjectChild, len(o.Children))
	for i, c := range o.Children {
		children[i] = cloneChild(c)
	}
	return &Object{Token: o.Token, Name: o.Name, FullName: o.FullName, Children: children}
}

func cloneChild(c ObjectChild) ObjectChild {
	switch t := c.(type) {
	case *SignalChild:
		cp := *t
		cp.Params = append([]Param(nil), t.Params...)
		return &cp
	case *PropertyChild:
		cp := *t
		cp.Modifiers = append([]string(nil), t.Modifiers...)
		cp.DefaultValue = cloneTokens(t.DefaultValue)
		return &cp
	case *ObjectPropertyChild:
		cp := *t
		cp.Modifiers = append([]string(nil), t.Modifiers...)
		cp.DefaultValue = t.DefaultValue.Clone()
		return &cp
	case *AssignmentChild:
		cp := *t
		cp.Value = cloneTokens(t.Value)
		return &cp
	case *ObjectAssignmentChild:
		cp := *t
		cp.Value = t.Value.Clone()
		return &cp
	case *FunctionChild:
		cp := *t
		cp.Params = append([]Param(nil), t.Params...)
		cp.Body = cloneTokens(t.Body)
		return &cp
	case *NestedObjectChild:
		return &NestedObjectChild{Object: t.Object.Clone()}
	case *EnumChild:
		cp := *t
		cp.Values = append([]EnumValue(nil), t.Values...)
		return &cp
	case *ComponentChild:
		cp := *t
		cp.Object = t.Object.Clone()
		return &cp
	default:
		return c
	}
}

func cloneTokens(toks []qmltoken.Token) []qmltoken.Token {
	if toks == nil {
		return nil
	}
	return append([]qmltoken.Token(nil), toks...)
}
