// Package checker - AST visitor tracking adoptions within one function.
package checker

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
)

// adoptVisitor implements ast.Visitor for one function body.
//
// It records every object adopted by NewShared or ResetTo under a key
// derived from the argument expression ("x" for both x and &x, "n.next"
// for a pointer field). Nested function literals get a visitor of their
// own since they may run any number of times.
type adoptVisitor struct {
	checker *Checker
	file    *fileContext

	// adopted maps an adoption key to the position of its first adoption.
	adopted map[string]token.Pos

	out *[]*Diagnostic
}

// Visit implements ast.Visitor.
func (v *adoptVisitor) Visit(node ast.Node) ast.Visitor {
	switch n := node.(type) {
	case *ast.FuncLit:
		v.checker.checkBody(v.file, n.Body, v.out)
		return nil

	case *ast.AssignStmt:
		// Right-hand side first: in p := sptr.NewShared(x) the adoption
		// happens before p is bound.
		for _, rhs := range n.Rhs {
			ast.Walk(v, rhs)
		}
		for _, lhs := range n.Lhs {
			if key, ok := adoptKey(lhs); ok {
				v.forget(key)
			}
		}
		return nil

	case *ast.CallExpr:
		v.visitCall(n)
	}
	return v
}

func (v *adoptVisitor) visitCall(call *ast.CallExpr) {
	if len(call.Args) != 1 {
		return
	}
	if name, ok := v.file.sptrFunc(call.Fun); ok && name == "NewShared" {
		v.adopt(call, call.Args[0], false)
		return
	}
	if sel, ok := call.Fun.(*ast.SelectorExpr); ok && sel.Sel.Name == "ResetTo" && !v.file.isPackage(sel.X) {
		v.adopt(call, call.Args[0], true)
	}
}

func (v *adoptVisitor) adopt(call *ast.CallExpr, arg ast.Expr, reset bool) {
	v.checker.stats.AdoptionsChecked++
	arg = ast.Unparen(arg)
	if id, ok := arg.(*ast.Ident); ok && id.Name == "nil" {
		return
	}

	if u, ok := arg.(*ast.UnaryExpr); ok && u.Op == token.AND {
		switch x := ast.Unparen(u.X).(type) {
		case *ast.SelectorExpr:
			if !v.file.isPackage(x.X) {
				v.reportSubobject(call, reset, arg, x.X)
				return
			}
		case *ast.IndexExpr:
			v.reportSubobject(call, reset, arg, x.X)
			return
		case *ast.CompositeLit:
			return
		}
	}

	key, ok := adoptKey(arg)
	if !ok {
		return
	}
	first, seen := v.adopted[key]
	if !seen {
		v.adopted[key] = call.Pos()
		return
	}

	line := v.checker.fset.Position(first).Line
	if reset {
		v.checker.report(v.out, call.Pos(), CheckAdoptAfterReset,
			fmt.Sprintf("ResetTo adopts %s, already adopted at line %d", key, line),
			"Assign the existing SharedPtr instead of adopting the object again")
		return
	}
	v.checker.report(v.out, call.Pos(), CheckDoubleAdopt,
		fmt.Sprintf("%s adopted a second time (first at line %d); both owners would destroy it", key, line),
		"Clone the first SharedPtr instead of calling NewShared again")
}

func (v *adoptVisitor) reportSubobject(call *ast.CallExpr, reset bool, arg, owner ast.Expr) {
	fn := v.file.qualify("NewShared")
	if reset {
		fn = types.ExprString(call.Fun)
	}
	expr := types.ExprString(arg)
	ownerExpr := types.ExprString(owner)
	v.checker.report(v.out, call.Pos(), CheckAdoptSubobject,
		fmt.Sprintf("%s adopts %s, a part of %s", fn, expr, ownerExpr),
		fmt.Sprintf("Use %s(owner, %s) with the SharedPtr that owns %s",
			v.file.qualify("Alias"), expr, ownerExpr))
}

// forget drops key and every key below it: reassigning n also makes
// n.next a different object.
func (v *adoptVisitor) forget(key string) {
	for k := range v.adopted {
		if k == key || (len(k) > len(key) && k[:len(key)] == key && k[len(key)] == '.') {
			delete(v.adopted, k)
		}
	}
}

// adoptKey returns the tracking key for an adopted expression. Only plain
// identifiers and selector chains over them are tracked; calls and
// literals create fresh objects.
func adoptKey(e ast.Expr) (string, bool) {
	e = ast.Unparen(e)
	if u, ok := e.(*ast.UnaryExpr); ok && u.Op == token.AND {
		e = ast.Unparen(u.X)
	}
	if !isSelectorChain(e) {
		return "", false
	}
	key := types.ExprString(e)
	if key == "_" {
		return "", false
	}
	return key, true
}

func isSelectorChain(e ast.Expr) bool {
	for {
		switch x := e.(type) {
		case *ast.Ident:
			return true
		case *ast.SelectorExpr:
			e = x.X
		default:
			return false
		}
	}
}
