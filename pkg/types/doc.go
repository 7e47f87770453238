// Package types defines the alphabet and numeral ordering, the generator
// configuration, trace command records, the ShadowStore interface, and the
// standard errors shared by the tracegen packages.
package types
