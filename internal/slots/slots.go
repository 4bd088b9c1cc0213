// Package slots implements the slot/template macro-expansion engine (spec
// §5), grounded on the original slots.rs's Slots/Slot/update_slots/
// build_template_code/expand_templates/expand_slots/flatten_slot. Go's GC
// removes the original's unsafe self-referential-aliasing trick in
// flatten_slot (`unsafe { &*(self.0.get(name).unwrap() as *const Slot) }`,
// used only to let Rust's borrow checker allow a recursive read of
// slot_contents.contents alongside a `read_back` write elsewhere in the
// map) -- a *Slot in Go is already an ordinary shared, mutable reference,
// so the recursive read and the read_back write need no workaround at all.
package slots

import (
	"fmt"

	"github.com/asivery/qmldiff/internal/diffast"
	"github.com/asivery/qmldiff/internal/qmltoken"
)

// Slot holds the accumulated contents declared under one SLOT or TEMPLATE
// name across however many blocks declared it.
type Slot struct {
	Contents []diffast.Instruction
	Template bool // templates are locked: declared once, never re-opened
	ReadBack bool
}

// Registry is the macro-expansion engine's slot table.
type Registry struct {
	slots map[string]*Slot
}

func NewRegistry() *Registry { return &Registry{slots: make(map[string]*Slot)} }

// Collect pulls TemplateDeclInstr/SlotInstr entries out of instrs into the
// registry and returns the remaining instructions untouched, mirroring
// update_slots's partition of a Change's instruction list into
// file-bound actions (kept) versus slot/template-bound ones (absorbed).
func (r *Registry) Collect(instrs []diffast.Instruction) ([]diffast.Instruction, error) {
	var kept []diffast.Instruction
	for _, instr := range instrs {
		switch v := instr.(type) {
		case diffast.TemplateDeclInstr:
			if err := r.define(v.Name, true, bodyToInsert(v.Body)); err != nil {
				return nil, err
			}
		case diffast.SlotInstr:
			if err := r.define(v.Name, false, v.Body); err != nil {
				return nil, err
			}
		default:
			kept = append(kept, instr)
		}
	}
	return kept, nil
}

func bodyToInsert(body []qmltoken.Token) []diffast.Instruction {
	return []diffast.Instruction{diffast.InsertInstr{Body: diffast.Insertable{Code: body}}}
}

func (r *Registry) define(name string, template bool, contents []diffast.Instruction) error {
	slot, created := r.slots[name]
	if !created {
		slot = &Slot{Template: template}
		r.slots[name] = slot
	} else if slot.Template {
		return fmt.Errorf("slots: cannot redefine template %q", name)
	}
	slot.Contents = append(slot.Contents, contents...)
	return nil
}

// AllReadBack reports whether every declared slot/template has been
// consumed by at least one INSERT/REPLACE, mirroring all_read_back.
func (r *Registry) AllReadBack() bool {
	for _, s := range r.slots {
		if !s.ReadBack {
			return false
		}
	}
	return true
}

// Unread returns the names of every slot/template that was declared but
// never referenced, for diagnostics (the original prints these to stderr
// before bailing).
func (r *Registry) Unread() []string {
	var names []string
	for name, s := range r.slots {
		if !s.ReadBack {
			names = append(names, name)
		}
	}
	return names
}

// buildTemplateCode merges a template's body with an invocation's named
// arguments: every `~{name}~` SlotReference token in the body whose literal
// matches an argument key is spliced out and replaced by that argument's
// value token run, mirroring build_template_code's merge-then-emit-raw
// behavior (spec §5's `~{placeholder}~` substitution syntax, in place of the
// original's full QML-assignment invocation body).
func (r *Registry) buildTemplateCode(name string, args []diffast.TemplateArg) ([]qmltoken.Token, error) {
	slot, ok := r.slots[name]
	if !ok {
		return nil, fmt.Errorf("slots: no such template %q", name)
	}
	if !slot.Template {
		return nil, fmt.Errorf("slots: cannot insert slot %q as a template", name)
	}
	body, err := flattenContents(r, slot.Contents)
	if err != nil {
		return nil, err
	}

	argByKey := make(map[string][]qmltoken.Token, len(args))
	used := make(map[string]bool, len(args))
	for _, a := range args {
		argByKey[a.Key] = a.Value
	}

	out := make([]qmltoken.Token, 0, len(body))
	for _, tok := range body {
		if tok.Type == qmltoken.SlotReference {
			if val, ok := argByKey[tok.Literal]; ok {
				used[tok.Literal] = true
				out = append(out, val...)
				continue
			}
			return nil, fmt.Errorf("slots: template %q has no invocation value for placeholder %q", name, tok.Literal)
		}
		out = append(out, tok)
	}
	for key := range argByKey {
		if !used[key] {
			return nil, fmt.Errorf("slots: template %q invocation value %q was never used", name, key)
		}
	}
	return out, nil
}

// flattenContents reduces a slot's contents (a list of Insert-shaped
// instructions, each carrying either raw Code or an unresolved
// slot/template reference) to one raw token stream, expanding nested
// slot/template references recursively.
func flattenContents(r *Registry, contents []diffast.Instruction) ([]qmltoken.Token, error) {
	var out []qmltoken.Token
	for _, instr := range contents {
		ins, ok := instr.(diffast.InsertInstr)
		if !ok {
			return nil, fmt.Errorf("slots: unexpected non-insert entry in slot contents")
		}
		switch {
		case ins.Body.Code != nil:
			out = append(out, ins.Body.Code...)
		case ins.Body.SlotName != "":
			nested, err := r.flattenSlot(ins.Body.SlotName)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		case ins.Body.TemplateName != "":
			nested, err := r.buildTemplateCode(ins.Body.TemplateName, ins.Body.TemplateArgs)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		default:
			return nil, fmt.Errorf("slots: slot content must be raw QML, a slot reference, or a template invocation")
		}
	}
	return out, nil
}

// flattenSlot is flatten_slot: recursively resolve a slot by name to a flat
// token stream, marking it read.
func (r *Registry) flattenSlot(name string) ([]qmltoken.Token, error) {
	slot, ok := r.slots[name]
	if !ok {
		return nil, fmt.Errorf("slots: cannot find slot %q", name)
	}
	slot.ReadBack = true
	return flattenContents(r, slot.Contents)
}

// ResolveFinalState is resolve_slot_final_state: the fully flattened token
// stream a top-level slot resolves to, for diagnostics/tooling that want to
// inspect a slot's expansion without going through a file's instructions.
func (r *Registry) ResolveFinalState(name string) ([]qmltoken.Token, error) {
	return r.flattenSlot(name)
}

// ExpandTemplates is expand_templates: replaces every INSERT/REPLACE whose
// body is a template invocation with the merged, emitted token stream.
func (r *Registry) ExpandTemplates(instrs []diffast.Instruction) ([]diffast.Instruction, error) {
	out := make([]diffast.Instruction, 0, len(instrs))
	for _, instr := range instrs {
		switch v := instr.(type) {
		case diffast.InsertInstr:
			if v.Body.TemplateName == "" {
				out = append(out, v)
				continue
			}
			if slot, ok := r.slots[v.Body.TemplateName]; ok {
				slot.ReadBack = true
			}
			code, err := r.buildTemplateCode(v.Body.TemplateName, v.Body.TemplateArgs)
			if err != nil {
				return nil, err
			}
			v.Body = diffast.Insertable{Code: code}
			out = append(out, v)
		case diffast.ReplaceInstr:
			if v.Body.TemplateName == "" {
				out = append(out, v)
				continue
			}
			if slot, ok := r.slots[v.Body.TemplateName]; ok {
				slot.ReadBack = true
			}
			code, err := r.buildTemplateCode(v.Body.TemplateName, v.Body.TemplateArgs)
			if err != nil {
				return nil, err
			}
			v.Body = diffast.Insertable{Code: code}
			out = append(out, v)
		default:
			out = append(out, instr)
		}
	}
	return out, nil
}

// ExpandSlots is expand_slots: replaces every INSERT/REPLACE whose body is a
// slot reference with that slot's fully flattened contents. A REPLACE
// collapses to one Code-bearing REPLACE; an INSERT of a slot splices the
// slot's own resolved instructions directly into the surrounding list, the
// same way the original's expand_slots recurses straight into `into`.
func (r *Registry) ExpandSlots(instrs []diffast.Instruction) ([]diffast.Instruction, error) {
	out := make([]diffast.Instruction, 0, len(instrs))
	for _, instr := range instrs {
		switch v := instr.(type) {
		case diffast.InsertInstr:
			if v.Body.SlotName == "" {
				out = append(out, v)
				continue
			}
			if slot, ok := r.slots[v.Body.SlotName]; ok {
				if slot.Template {
					return nil, fmt.Errorf("slots: cannot insert template %q as a slot", v.Body.SlotName)
				}
				slot.ReadBack = true
				resolved, err := r.ExpandSlots(slot.Contents)
				if err != nil {
					return nil, err
				}
				out = append(out, resolved...)
			}
		case diffast.ReplaceInstr:
			if v.Body.SlotName == "" {
				out = append(out, v)
				continue
			}
			code, err := r.flattenSlot(v.Body.SlotName)
			if err != nil {
				return nil, err
			}
			v.Body = diffast.Insertable{Code: code}
			out = append(out, v)
		default:
			out = append(out, instr)
		}
	}
	return out, nil
}

// Process is process_slots: for every Change, pull out slot/template
// declarations, then expand templates-before-slots (a template invocation
// nested inside a slot must already be resolved to raw code by the time the
// slot itself gets flattened).
func Process(doc *diffast.Document) (*Registry, error) {
	r := NewRegistry()
	for i := range doc.Changes {
		kept, err := r.Collect(doc.Changes[i].Instructions)
		if err != nil {
			return nil, err
		}
		doc.Changes[i].Instructions = kept
	}
	for i := range doc.Changes {
		expanded, err := r.ExpandTemplates(doc.Changes[i].Instructions)
		if err != nil {
			return nil, err
		}
		expanded, err = r.ExpandSlots(expanded)
		if err != nil {
			return nil, err
		}
		doc.Changes[i].Instructions = expanded
	}
	return r, nil
}
