// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// predicateEnv is the single shared CEL environment every dynamic
// condition compiles against (spec §4.5, §9 design note "predicate
// language"). Two variables are exposed to a predicate's expression
// text:
//
//   self      map(string, dyn)   — the fields of the message the
//                                  predicated field belongs to, by name.
//   ancestors list(map(string, dyn)) — the enclosing messages' fields,
//                                  nearest first: ancestors[0] is the
//                                  immediate parent, ancestors[1] the
//                                  grandparent, and so on.
//
// The grammar is whatever CEL supports: comparisons, &&/||/!, arithmetic,
// and indexing — e.g. "self.a > 30", "!ancestors[0].enabled",
// "self.state == 1 && self.a < self.b". A bare field name such as "a" is
// not a declared variable and fails to compile. No side effects are expressible by construction
// (CEL has none).
var predicateEnv = mustPredicateEnv()

func mustPredicateEnv() *cel.Env {
	env, err := cel.NewEnv(
		cel.Variable("self", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("ancestors", cel.ListType(cel.MapType(cel.StringType, cel.DynType))),
	)
	if err != nil {
		panic(fmt.Sprintf("dccl: building predicate environment: %v", err))
	}
	return env
}

// predicate is a compiled dynamic condition bound to the expression
// source it was parsed from, cached in the compiled schema's per-field
// conditions at Load time so Encode/Decode never re-parse it.
type predicate struct {
	src string
	prg cel.Program
}

// compilePredicate parses src at schema Load time. Parse errors are
// reported as ErrSchemaError, matching spec §4.5 ("Parse errors in
// predicates are detected at schema load").
func compilePredicate(src string) (*predicate, error) {
	ast, iss := predicateEnv.Compile(src)
	if iss != nil && iss.Err() != nil {
		return nil, wrapFieldCause(ErrSchemaError, "predicate", fmt.Errorf("parsing %q: %w", src, iss.Err()))
	}
	prg, err := predicateEnv.Program(ast)
	if err != nil {
		return nil, wrapFieldCause(ErrSchemaError, "predicate", fmt.Errorf("compiling %q: %w", src, err))
	}
	return &predicate{src: src, prg: prg}, nil
}

// eval evaluates the predicate against the current traversal context.
// Runtime type mismatches — a missing sibling, a non-boolean result —
// are reported as ErrPredicateType (spec §4.5: "runtime type mismatches
// are fatal").
func (p *predicate) eval(ctx *Context) (bool, error) {
	cur := ctx.Current()
	var self map[string]interface{}
	if cur != nil {
		self = cur.selfMap()
	} else {
		self = map[string]interface{}{}
	}
	ancestors := make([]map[string]interface{}, 0, len(ctx.Ancestors()))
	for _, m := range ctx.Ancestors() {
		ancestors = append(ancestors, m.selfMap())
	}
	out, _, err := p.prg.Eval(map[string]interface{}{
		"self":      self,
		"ancestors": ancestors,
	})
	if err != nil {
		return false, wrapFieldCause(ErrPredicateType, p.src, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, wrapFieldCause(ErrPredicateType, p.src, fmt.Errorf("predicate did not evaluate to a bool, got %T", out.Value()))
	}
	return b, nil
}

// dynamicConditions holds a field's compiled omit_if/required_if
// predicates, parsed once at Load (Options.OnlyIf is desugared into both
// at compile time — see compileDynamicConditions).
type dynamicConditions struct {
	omitIf     *predicate
	requiredIf *predicate
}

func (dc *dynamicConditions) hasAny() bool {
	return dc != nil && (dc.omitIf != nil || dc.requiredIf != nil)
}

// compileDynamicConditions parses a field's omit_if/required_if/only_if
// options. only_if is a synonym that both requires the field when true
// and omits it when false, per spec §6 ("only_if (predicate, synonym for
// required_if+omit_if)").
func compileDynamicConditions(fd *FieldDescriptor) (*dynamicConditions, error) {
	dc := &dynamicConditions{}
	switch {
	case fd.Options.OnlyIf != "":
		req, err := compilePredicate(fd.Options.OnlyIf)
		if err != nil {
			return nil, err
		}
		omit, err := compilePredicate("!(" + fd.Options.OnlyIf + ")")
		if err != nil {
			return nil, err
		}
		dc.requiredIf = req
		dc.omitIf = omit
	default:
		if fd.Options.OmitIf != "" {
			p, err := compilePredicate(fd.Options.OmitIf)
			if err != nil {
				return nil, err
			}
			dc.omitIf = p
		}
		if fd.Options.RequiredIf != "" {
			p, err := compilePredicate(fd.Options.RequiredIf)
			if err != nil {
				return nil, err
			}
			dc.requiredIf = p
		}
	}
	return dc, nil
}
