// Package storage defines the persistence contracts for the similarity
// index and the binary serialization of its records.
//
// The index survives restarts through three tables: an append-only
// embedding table keyed by report content ID, an assignment table tagged
// with the embedding version it was computed under, and a single metadata
// record carrying the current version. Records are serialized with the MUS
// binary format.
package storage
