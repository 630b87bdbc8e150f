// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

// Part identifies which logical partition of a message a field belongs
// to: HEAD fields are encoded before BODY fields (spec §3, §4.4).
type Part int

const (
	PartHead Part = iota
	PartBody
)

func (p Part) String() string {
	if p == PartHead {
		return "HEAD"
	}
	return "BODY"
}

// frame is one entry of the traversal context stack: the message being
// traversed, the field descriptor through which it was reached (nil at
// the root), and the part it belongs to.
type frame struct {
	msg   *Message
	field *FieldDescriptor
	part  Part
}

// Context is the traversal context described in spec §3 and §5: a stack
// of ancestor messages, the field descriptors through which we
// descended, and the current Part, threaded explicitly through codec
// calls rather than kept as process-wide globals (spec §9 design note
// "traversal context as scoped global"). A Context is owned by one
// Facade call and is never shared across goroutines.
type Context struct {
	stack []frame
}

// NewContext returns an empty traversal context.
func NewContext() *Context {
	return &Context{}
}

// Empty reports whether the stack is unwound, which must hold before and
// after every top-level Encode/Decode call (spec §3 invariant).
func (c *Context) Empty() bool { return len(c.stack) == 0 }

// pushMessage pushes a new frame and returns a guard function that pops
// it. The guard must run on every exit path, including error returns —
// the nested-message codec defers it so a panic still unwinds the stack,
// matching spec §5's "if the host language has exceptions/panics, the
// pop must still run"; Facade calls it directly after the top-level
// encode/decode/size call returns.
func (c *Context) pushMessage(msg *Message, field *FieldDescriptor, part Part) func() {
	c.stack = append(c.stack, frame{msg: msg, field: field, part: part})
	depth := len(c.stack)
	return func() {
		if len(c.stack) != depth {
			panic("dccl: traversal context popped out of order")
		}
		c.stack = c.stack[:depth-1]
	}
}

// Current returns the innermost message being encoded/decoded, or nil at
// the root before any frame has been pushed.
func (c *Context) Current() *Message {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1].msg
}

// CurrentPart returns the Part of the innermost frame, defaulting to
// BODY outside of any message (the root message is always BODY unless
// it was itself reached through an in_head field).
func (c *Context) CurrentPart() Part {
	if len(c.stack) == 0 {
		return PartBody
	}
	return c.stack[len(c.stack)-1].part
}

// Ancestors returns, from nearest to farthest, the messages enclosing
// the current frame (excluding the current message itself). Index 0 is
// the immediate parent. Used to build the "ancestors" list exposed to
// dynamic-condition predicates (spec §4.5).
func (c *Context) Ancestors() []*Message {
	if len(c.stack) <= 1 {
		return nil
	}
	out := make([]*Message, 0, len(c.stack)-1)
	for i := len(c.stack) - 2; i >= 0; i-- {
		out = append(out, c.stack[i].msg)
	}
	return out
}
