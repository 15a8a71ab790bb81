// Package loaders holds DocumentLoader implementations that turn files on
// disk into ordered page records.
package loaders
