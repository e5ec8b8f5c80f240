// Package normalisers provides implementations of the Normaliser interface
// for the supported course document formats. Each normaliser knows how to
// extract line-structured text from a specific MIME type.
//
// Normalisers are registered with the Registry at startup.
package normalisers
