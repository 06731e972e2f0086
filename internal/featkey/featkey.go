// Package featkey turns a window of dialogue states into the canonical
// string key used by the memoization lookup table.
package featkey

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"slices"
	"strings"

	"github.com/danielpatrickdp/dialogue-memo/internal/dialogue"
)

// #region render

// Render serializes a state window to its canonical text form. Fields
// appear in a fixed lexicographic order (prev_action, slots, user), slot
// assignments and entity names are sorted, so two structurally identical
// windows always render to the same string.
func Render(window []dialogue.State) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range window {
		if i > 0 {
			b.WriteString(", ")
		}
		renderState(&b, s)
	}
	b.WriteByte(']')
	return b.String()
}

func renderState(b *strings.Builder, s dialogue.State) {
	b.WriteByte('{')
	first := true
	sep := func() {
		if !first {
			b.WriteString(", ")
		}
		first = false
	}

	if s.PrevAction != "" {
		sep()
		b.WriteString("prev_action: {action_name: ")
		b.WriteString(s.PrevAction)
		b.WriteByte('}')
	}
	if len(s.Slots) > 0 {
		sep()
		b.WriteString("slots: {")
		slots := slices.Clone(s.Slots)
		slices.SortFunc(slots, func(a, c dialogue.SlotValue) int {
			return strings.Compare(a.Name, c.Name)
		})
		for i, sv := range slots {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(sv.Name)
			b.WriteString(": ")
			b.WriteString(sv.Value)
		}
		b.WriteByte('}')
	}
	if s.User.Intent != "" || len(s.User.Entities) > 0 {
		sep()
		b.WriteString("user: {")
		if len(s.User.Entities) > 0 {
			ents := slices.Clone(s.User.Entities)
			slices.Sort(ents)
			b.WriteString("entities: [")
			b.WriteString(strings.Join(ents, ", "))
			b.WriteByte(']')
			if s.User.Intent != "" {
				b.WriteString(", ")
			}
		}
		if s.User.Intent != "" {
			b.WriteString("intent: ")
			b.WriteString(s.User.Intent)
		}
		b.WriteByte('}')
	}
	b.WriteByte('}')
}

// #endregion render

// #region key

// Key returns the lookup key for a state window. With compress set, the
// canonical rendering is deflated and base64-encoded to keep stored keys
// compact; the transform is deterministic either way. The empty window
// yields the empty key, which callers must treat as "do not store".
func Key(window []dialogue.State, compress bool) string {
	if len(window) == 0 {
		return ""
	}
	rendered := Render(window)
	if !compress {
		return rendered
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	// Writes to an in-memory buffer cannot fail.
	_, _ = zw.Write([]byte(rendered))
	_ = zw.Close()
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// #endregion key
