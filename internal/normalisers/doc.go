// Package normalisers provides implementations of the Normaliser interface.
// A normaliser cleans page text after loading and before chunking.
package normalisers
