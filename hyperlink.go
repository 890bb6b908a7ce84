package vtcore

import "github.com/mitchellh/hashstructure/v2"

// hyperlinkKey is the value hashed to decide whether two OSC 8 sequences
// refer to the same link. Two sequences with the same id-hint and URI are
// the same link per the OSC 8 convention (an empty id-hint means "no
// explicit id"; such links are deduplicated purely on URI).
type hyperlinkKey struct {
	ID  string
	URI string
}

// hyperlinkInternTable is the per-screen intern table described in
// spec.md §3 ("Hyperlinks... Stored in a per-screen intern table; cells
// reference by id"). Interning the same (id-hint, URI) pair twice returns
// the same *Hyperlink pointer, so cells written under separate SetHyperlink
// calls for what is really one link still compare equal and can be grouped
// for hover-highlighting by a render sink.
type hyperlinkInternTable struct {
	byHash map[uint64]*Hyperlink
}

func newHyperlinkInternTable() *hyperlinkInternTable {
	return &hyperlinkInternTable{byHash: make(map[uint64]*Hyperlink)}
}

// intern returns the canonical *Hyperlink for (idHint, uri), creating and
// storing one on first use. If hashing fails (never expected for a plain
// string struct) a fresh, un-deduplicated Hyperlink is returned rather than
// panicking.
func (t *hyperlinkInternTable) intern(idHint, uri string) *Hyperlink {
	h, err := hashstructure.Hash(hyperlinkKey{ID: idHint, URI: uri}, hashstructure.FormatV2, nil)
	if err != nil {
		return &Hyperlink{ID: idHint, URI: uri}
	}
	if existing, ok := t.byHash[h]; ok {
		return existing
	}
	link := &Hyperlink{ID: idHint, URI: uri}
	t.byHash[h] = link
	return link
}

// clear drops all interned links. Cells already holding a *Hyperlink are
// unaffected; only future intern calls stop deduplicating against the old
// set (used when a screen is reset, e.g. RIS).
func (t *hyperlinkInternTable) clear() {
	t.byHash = make(map[uint64]*Hyperlink)
}
