// Package schema defines the on-disk definition records for a shaperig
// system and the codecs for the three supported encoding generations.
//
// Version 1 is the legacy format built from flat indexed arrays. Versions 2
// and 3 use named-field records; 3 differs from 2 only in the shape of the
// traversal record. Readers accept all three; writers emit version 3 unless
// the legacy flag asks for version 1.
//
// The package is deliberately ignorant of the live object graph: it maps
// JSON to neutral records and back. pkg/domain owns the translation between
// records and graph objects.
package schema
