// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CitationSource records which service produced a citation count. It is
// mandatory provenance: it survives to the final output and is the basis
// for trust decisions made by callers.
type CitationSource string

const (
	// SourcePrimary is the local citation index service.
	SourcePrimary CitationSource = "primary"

	// SourceSecondary is the public OpenCitations API.
	SourceSecondary CitationSource = "secondary"

	// SourceUnavailable marks a paper whose lookup failed at every source.
	SourceUnavailable CitationSource = "unavailable"
)

// PaperRecord holds one row from the primary metadata store. Records are
// owned by the executor and immutable once constructed.
type PaperRecord struct {
	// ID is the store identifier. It may embed external identifiers,
	// e.g. "doi:10.1007/xyz meta:br/0601234" or a raw DOI.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Author is the author string as stored (semicolon-separated names).
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// PubDate is the publication date. Zero when the store row has none.
	PubDate time.Time `json:"pub_date" yaml:"pub_date"`

	// Venue is the journal or conference name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Type is the publication type (e.g. "journal article").
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// CitationRecord holds the citation lookup result for one paper.
type CitationRecord struct {
	// PaperID is the primary-store identifier the lookup was issued for.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Count is the citation count. Zero when Source is SourceUnavailable.
	Count int `json:"count" yaml:"count"`

	// Source records which service produced Count.
	Source CitationSource `json:"source" yaml:"source"`

	// SampleCitingIDs lists up to a handful of citing-paper identifiers,
	// when the source returns citation details.
	SampleCitingIDs []string `json:"sample_citing_ids,omitempty" yaml:"sample_citing_ids,omitempty"`
}

// EnrichedPaper joins a PaperRecord with its CitationRecord. A paper whose
// citation lookup failed everywhere still appears, with Source unavailable
// and Count zero.
type EnrichedPaper struct {
	PaperRecord `yaml:",inline"`

	Citations CitationRecord `json:"citations" yaml:"citations"`
}
