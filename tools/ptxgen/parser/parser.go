// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package parser contains a parser that takes a sequence of
// specification tokens and produces an abstract syntax tree.
//
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"firefly-os.dev/tools/ptxgen/ast"
	"firefly-os.dev/tools/ptxgen/diag"
	"firefly-os.dev/tools/ptxgen/lexer"
	"firefly-os.dev/tools/ptxgen/stream"
	"firefly-os.dev/tools/ptxgen/token"
)

// If src != nil, readSource converts src to a []byte if possible;
// otherwise it returns an error. If src == nil, readSource returns
// the result of reading the file specified by filename.
//
func readSource(filename string, src any) ([]byte, error) {
	if src != nil {
		switch s := src.(type) {
		case string:
			return []byte(s), nil
		case []byte:
			return s, nil
		case *bytes.Buffer:
			// is io.Reader, but src is already available in []byte form
			if s != nil {
				return s.Bytes(), nil
			}
		case io.Reader:
			return io.ReadAll(s)
		}

		return nil, errors.New("invalid source")
	}

	return os.ReadFile(filename)
}

// ParseFile parses a single specification and returns the
// corresponding ast.File node. The source may be provided via
// the filename of the source file, or via the src parameter.
//
// If src != nil, ParseFile parses the source from src and the
// filename is only used when reporting errors. The type of the
// argument for the src parameter must be string, []byte, or
// io.Reader. If src == nil, ParseFile parses the file specified
// by filename.
//
// Any error returned wraps one of the diag errors, which can be
// recovered with errors.As.
//
func ParseFile(filename string, src any) (f *ast.File, err error) {
	text, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}

	lexemes, err := lexer.Tokenize(text)
	if err != nil {
		return nil, wrap(filename, err)
	}

	p := &parser{lexemes: stream.New(lexemes)}
	defer func() {
		if e := recover(); e != nil {
			// resume same panic if it's not a bailout
			if _, ok := e.(bailout); !ok {
				panic(e)
			}

			f = nil
			err = wrap(filename, p.err)
		}
	}()

	f = p.parseFile()
	p.checkAliases(f)

	return f, nil
}

func wrap(filename string, err error) error {
	if filename == "" {
		return err
	}

	return fmt.Errorf("%s: %w", filename, err)
}

// parser holds the internal state of the parser.
//
type parser struct {
	lexemes *stream.Stream[token.Token]

	// Error being reported.
	err error
}

// A bailout panic is raised to indicate early termination.
//
type bailout struct{}

func (p *parser) fail(err error) {
	p.err = err
	panic(bailout{})
}

// expect consumes a token of the given kind, or fails.
//
func (p *parser) expect(tok token.Token) lexer.Lexeme {
	l, err := p.lexemes.Expect(tok)
	if err != nil {
		p.fail(err)
	}

	return l
}

// errorExpected fails with an error reporting that the
// current token is not one of the expected set.
//
func (p *parser) errorExpected(expected ...string) {
	p.fail(p.lexemes.Unexpected(expected...))
}

func (p *parser) peek() token.Token {
	return p.lexemes.Peek().Token
}

func (p *parser) parseFile() *ast.File {
	f := new(ast.File)
	for {
		doc := p.parseDocs()
		switch p.peek() {
		case token.EndOfFile:
			return f
		case token.Identifier:
			f.Decls = append(f.Decls, p.parseForm(doc))
		case token.Directive:
			f.Decls = append(f.Decls, p.parseTypeDecl(doc))
		default:
			p.errorExpected(token.Identifier.String(), token.Directive.String())
		}
	}
}

// parseDocs collects any doc comments preceding the
// next declaration.
//
func (p *parser) parseDocs() *ast.CommentGroup {
	var group *ast.CommentGroup
	for p.peek() == token.DocComment {
		l := p.lexemes.Advance()
		if group == nil {
			group = new(ast.CommentGroup)
		}

		group.List = append(group.List, &ast.Comment{Slash: l.Span.Start, Text: l.Value})
	}

	return group
}

func (p *parser) parseIdent() *ast.Ident {
	l := p.expect(token.Identifier)
	return &ast.Ident{NamePos: l.Span.Start, Name: l.Value}
}

func (p *parser) parseDirective() *ast.Directive {
	l := p.expect(token.Directive)
	return &ast.Directive{NamePos: l.Span.Start, Name: l.Value}
}

// parseForm parses an instruction form:
//
// 	form = Identifier { qualifier } [ operand { "," operand } ] ";" .
//
func (p *parser) parseForm(doc *ast.CommentGroup) *ast.InstructionForm {
	form := &ast.InstructionForm{
		Doc:    doc,
		Opcode: p.parseIdent(),
	}

	// Qualifiers.
	for {
		switch p.peek() {
		case token.Directive:
			form.Qualifiers = append(form.Qualifiers, &ast.Qualifier{Directive: p.parseDirective()})
			continue
		case token.BraceOpen:
			open := p.lexemes.Advance()
			dir := p.parseDirective()
			closing := p.expect(token.BraceClose)
			form.Qualifiers = append(form.Qualifiers, &ast.Qualifier{
				BraceOpen:  open.Span.Start,
				Directive:  dir,
				BraceClose: closing.Span.Start,
			})
			continue
		}

		break
	}

	// Operands.
	if p.peek() != token.Semicolon {
		for {
			form.Operands = append(form.Operands, p.parseOperand())
			if _, ok := p.lexemes.Accept(token.Comma); !ok {
				break
			}
		}
	}

	if p.peek() != token.Semicolon {
		p.errorExpected(token.Comma.String(), token.Semicolon.String())
	}

	form.Semicolon = p.lexemes.Advance().Span.Start

	return form
}

// parseOperand parses a single operand:
//
// 	operand = ( Identifier | "[" Identifier "]" ) [ "|" Identifier ] .
//
func (p *parser) parseOperand() *ast.Operand {
	op := new(ast.Operand)
	switch p.peek() {
	case token.Identifier:
		op.Name = p.parseIdent()
	case token.BracketOpen:
		op.BracketOpen = p.lexemes.Advance().Span.Start
		op.Name = p.parseIdent()
		op.BracketClose = p.expect(token.BracketClose).Span.Start
	default:
		p.errorExpected(token.Identifier.String(), token.BracketOpen.String())
	}

	if pipe, ok := p.lexemes.Accept(token.Pipe); ok {
		op.Pipe = pipe.Span.Start
		op.Alternate = p.parseIdent()
	}

	return op
}

// parseTypeDecl parses a type declaration:
//
// 	typedecl = Directive "=" ( "{" Directive { "," Directive } [ "," ] "}" | Directive ) ";" .
//
func (p *parser) parseTypeDecl(doc *ast.CommentGroup) *ast.TypeDecl {
	decl := &ast.TypeDecl{
		Doc:  doc,
		Name: p.parseDirective(),
	}

	decl.Equals = p.expect(token.Equals).Span.Start
	switch p.peek() {
	case token.Directive:
		decl.Alias = p.parseDirective()
	case token.BraceOpen:
		decl.BraceOpen = p.lexemes.Advance().Span.Start
		decl.Values = append(decl.Values, p.parseDirective())
		for {
			if _, ok := p.lexemes.Accept(token.Comma); !ok {
				break
			}

			// Allow a trailing comma.
			if p.peek() == token.BraceClose {
				break
			}

			decl.Values = append(decl.Values, p.parseDirective())
		}

		if p.peek() != token.BraceClose {
			p.errorExpected(token.Comma.String(), token.BraceClose.String())
		}

		decl.BraceClose = p.lexemes.Advance().Span.Start
	default:
		p.errorExpected(token.BraceOpen.String(), token.Directive.String())
	}

	decl.Semicolon = p.expect(token.Semicolon).Span.Start

	return decl
}

// checkAliases ensures that every alias refers to a
// placeholder declared somewhere in the file. Aliases
// may refer to declarations that follow them.
//
func (p *parser) checkAliases(f *ast.File) {
	declared := make(map[string]bool)
	for _, decl := range f.Decls {
		if typ, ok := decl.(*ast.TypeDecl); ok {
			declared[typ.Name.Name] = true
		}
	}

	for _, decl := range f.Decls {
		typ, ok := decl.(*ast.TypeDecl)
		if !ok || typ.Alias == nil {
			continue
		}

		if !declared[typ.Alias.Name] {
			p.fail(&diag.UnknownTypeReference{Name: typ.Alias.Name, Span: typ.Alias.Span()})
		}
	}
}
