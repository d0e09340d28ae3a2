// Package mock provides deterministic test doubles for the ai package
// interfaces.
//
// Every capability is reproducible without network access: extraction matches
// a fixed clinical lexicon, classification grades by keyword tier, encoding
// hashes the text into a unit vector, and explanation attributes matched
// keywords. Custom behavior can be injected per call via function fields.
package mock
