// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package format renders trees of labelled nodes in a parenthesised,
// indented form, and includes the tree rendering of an analysed
// instruction syntax specification.
//
package format

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"firefly-os.dev/tools/ptxgen/types"
)

// indent is the text used for each level of
// nesting.
//
const indent = "  "

// Node is a labelled node in a tree.
//
type Node struct {
	Label    string
	Children []*Node
}

// NewNode is a helper for constructing a node.
//
func NewNode(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children}
}

// Add appends children to the node.
//
func (n *Node) Add(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// String renders the tree rooted at n.
//
func (n *Node) String() string {
	var buf bytes.Buffer
	n.print(&buf, 0)
	buf.WriteByte('\n')

	return buf.String()
}

// Fprint writes the tree rooted at n to w.
//
// Each node is printed as its label inside
// parentheses. Children are printed on the
// following lines, indented by one level more
// than their parent, with the parent's closing
// parenthesis following its last child.
//
func Fprint(w io.Writer, n *Node) error {
	allocated := false
	var buf *bytes.Buffer
	if b, ok := w.(*bytes.Buffer); ok {
		buf = b
	} else {
		allocated = true
		buf = new(bytes.Buffer)
	}

	n.print(buf, 0)
	buf.WriteByte('\n')

	if allocated {
		_, err := w.Write(buf.Bytes())
		return err
	}

	return nil
}

func (n *Node) print(buf *bytes.Buffer, depth int) {
	buf.WriteString(strings.Repeat(indent, depth))
	buf.WriteByte('(')
	buf.WriteString(n.Label)
	for _, child := range n.Children {
		buf.WriteByte('\n')
		child.print(buf, depth+1)
	}

	buf.WriteByte(')')
}

// Tree returns the tree representation of an
// analysed specification, with its declarations
// in source order.
//
func Tree(spec *types.Spec) *Node {
	root := NewNode("spec")
	for _, decl := range spec.Decls {
		switch decl := decl.(type) {
		case *types.Family:
			root.Add(familyNode(decl))
		case *types.TypeDecl:
			root.Add(typeNode(decl))
		}
	}

	return root
}

func nameNode(name string) []*Node {
	if name == "" {
		return nil
	}

	return []*Node{NewNode("name " + name)}
}

func docsNode(docs types.Docs) []*Node {
	if len(docs) == 0 {
		return nil
	}

	quoted := make([]string, len(docs))
	for i, line := range docs {
		quoted[i] = strconv.Quote(line)
	}

	return []*Node{NewNode("docs " + strings.Join(quoted, " "))}
}

func familyNode(fam *types.Family) *Node {
	n := NewNode("family " + fam.Opcode)
	n.Add(nameNode(fam.Name)...)
	n.Add(docsNode(fam.Docs)...)
	for _, form := range fam.Forms {
		n.Add(formNode(form))
	}

	return n
}

func formNode(form *types.Form) *Node {
	n := NewNode("form " + strconv.Quote(form.String()))
	if form.Family.Union() {
		n.Add(nameNode(form.Name)...)
		n.Add(docsNode(form.Docs)...)
	}

	for _, q := range form.Qualifiers {
		n.Add(NewNode("qualifier " + q.Kind.String() + " " + q.Text()))
	}

	for _, op := range form.Operands {
		n.Add(operandNode("operand", op))
	}

	return n
}

func operandNode(label string, op *types.Operand) *Node {
	n := NewNode(label + " " + op.Name + " " + op.Kind.String())
	if op.Secondary != nil {
		n.Add(operandNode("secondary", op.Secondary))
	}

	return n
}

func typeNode(decl *types.TypeDecl) *Node {
	n := NewNode("type " + decl.Placeholder)
	n.Add(nameNode(decl.Name)...)
	n.Add(docsNode(decl.Docs)...)
	if decl.Scope != nil {
		n.Add(NewNode("scope " + decl.Scope.Opcode))
	}

	if decl.Alias != nil {
		n.Add(NewNode("alias " + decl.Alias.Placeholder))
	}

	for _, value := range decl.Values {
		n.Add(NewNode("value " + value))
	}

	return n
}
