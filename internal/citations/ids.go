// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citations enriches paper records with citation counts. Counts
// come from the local citation index when it is reachable and from the
// OpenCitations public API otherwise; a paper neither source can resolve
// is annotated as unavailable rather than dropped.
// Implements: prd010-citation-enrichment (R1-R4).
package citations

import (
	"errors"
	"strings"
)

// errNoIdentifier means a source cannot look this paper up at all, as
// opposed to a lookup that failed.
var errNoIdentifier = errors.New("no usable identifier")

// Identifier is a paper id reconciled into the forms the two citation
// sources accept. Either field may be empty.
type Identifier struct {
	// Local is the id form the local citation index accepts ("omid:br/..."
	// or a DOI).
	Local string

	// DOI is the bare DOI for the public API, without a scheme prefix.
	DOI string
}

// Resolvable reports whether any source can look this identifier up.
func (id Identifier) Resolvable() bool {
	return id.Local != "" || id.DOI != ""
}

// Reconcile maps a stored paper id onto the id forms of the citation
// sources. The store's id column comes from an OpenCitations Meta dump,
// so one value may hold several whitespace-separated identifiers in any
// order ("doi:10.1007/xyz meta:br/0601234", "isbn:... doi:..."). Each
// token is inspected on its own: a Meta id becomes the local "omid:"
// form, a "doi:" token or bare DOI becomes the public-API DOI, and the
// local source falls back to the DOI when no Meta id is present. A value
// with neither resolves to nothing and the paper is reported unavailable
// without a network call.
func Reconcile(paperID string) Identifier {
	var id Identifier
	for _, tok := range strings.Fields(paperID) {
		switch {
		case strings.HasPrefix(tok, "meta:br/"):
			id.Local = "omid:br/" + strings.TrimPrefix(tok, "meta:br/")
		case strings.HasPrefix(tok, "doi:"):
			if id.DOI == "" {
				id.DOI = strings.TrimPrefix(tok, "doi:")
			}
		case strings.HasPrefix(tok, "10."):
			if id.DOI == "" {
				id.DOI = tok
			}
		}
	}
	if id.Local == "" {
		id.Local = id.DOI
	}
	return id
}
