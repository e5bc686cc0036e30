// Package bibfetch detects bibliographic references on web pages and
// converts them to BibTeX/BibLaTeX for a desktop reference manager.
// Pages are matched against pattern-based translators, the matching
// translators are run against a parsed document in rank order, and the
// first successful extraction is serialized.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, regexp2/, rod/).
package bibfetch
