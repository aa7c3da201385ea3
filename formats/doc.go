// Package formats records which DRM formats a device supports and, for each
// format, which memory layout modifiers.
//
// A Set holds one Entry per fourcc; an Entry holds each modifier at most
// once. Both grow by doubling from a capacity of four and never shrink.
// Entries are addressed by Handle, an index resolved through the owning Set
// on every use, so growing a set never leaves a caller holding a stale
// entry.
//
// A Set is not safe for concurrent mutation. It is meant to be built by a
// single capability pass and then only read.
package formats
