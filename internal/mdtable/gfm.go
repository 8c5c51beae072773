// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdtable

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/recsheet/pkg/types"
)

var gfm = goldmark.New(goldmark.WithExtensions(extension.Table))

// ParseGFM reads the first table in raw using the goldmark GFM table
// extension. Unlike Parse it requires a well-formed delimiter row, honors
// escaped pipes and inline markup, and drops cells beyond the header width
// the way GitHub renders them. The result is normalized like Parse.
func ParseGFM(raw string) (types.StructuredTable, error) {
	src := []byte(raw)
	doc := gfm.Parser().Parse(text.NewReader(src))

	var (
		header []string
		rows   [][]string
		found  bool
	)

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Kind() == extast.KindTable {
				return ast.WalkStop, nil
			}
			return ast.WalkContinue, nil
		}

		switch n.Kind() {
		case extast.KindTable:
			found = true
		case extast.KindTableHeader:
			header = cellTexts(n, src)
			return ast.WalkSkipChildren, nil
		case extast.KindTableRow:
			rows = append(rows, cellTexts(n, src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return types.StructuredTable{}, err
	}
	if !found {
		return types.StructuredTable{}, ErrNoTable
	}

	return Normalize(header, rows), nil
}

// cellTexts collects the trimmed text of every TableCell child of n.
func cellTexts(n ast.Node, src []byte) []string {
	var cells []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() != extast.KindTableCell {
			continue
		}
		cells = append(cells, strings.TrimSpace(string(c.Text(src))))
	}
	return cells
}
