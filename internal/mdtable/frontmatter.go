// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdtable

import (
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/pdiddy/recsheet/pkg/types"
)

// StripFrontMatter removes a leading YAML front matter block and decodes it
// into a DraftMeta. A leading byte order mark is dropped. The text is
// returned otherwise unchanged with a nil meta when it has no front matter,
// when the block is not valid YAML, or when it sets none of the DraftMeta
// fields: a document may open with a horizontal rule around plain prose.
func StripFrontMatter(raw string) (string, *types.DraftMeta) {
	raw = strings.TrimPrefix(raw, "\uFEFF")
	if !strings.HasPrefix(strings.TrimLeft(raw, " \t\r\n"), "---") {
		return raw, nil
	}

	var meta types.DraftMeta
	body, err := frontmatter.Parse(strings.NewReader(raw), &meta)
	if err != nil || meta == (types.DraftMeta{}) {
		return raw, nil
	}
	return string(body), &meta
}
