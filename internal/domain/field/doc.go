// Package field implements the field domain: named physical quantities and
// the registry that indexes them.
//
// # Core Types
//
// Field pairs a canonical name with a resolved unit, display symbols, lookup
// aliases, region exclusions, an optional default value and open metadata.
// Fields are immutable once built; use Builder (or FromKind) to create them.
//
// Kind classifies a quantity (magnetic_field, temperature, ...) and supplies
// its SI default unit, symbol and LaTeX symbol.
//
// # Registry Collection
//
// Registry indexes fields three ways:
//   - by name: unique, authoritative
//   - by alias: unique across the registry, one owner per alias
//   - by symbol: shared, last registration wins
//
// Get resolves name first, then symbol, then alias. Register is atomic across
// the indices; BulkRegister is not transactional and keeps the fields that
// were registered before a failure.
//
// Provider is the read-only interface Registry implements.
package field
