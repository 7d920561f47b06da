// Copyright (c) 2024 Neomantra Corp
//
// Adapted from DataBento's DBN:
//   https://github.com/databento/dbn/blob/main/rust/dbn-cli/src/filter.rs
//

package dbn

// RecordRefSource is the minimal surface a record-ref filter needs to decorate:
// advance to the next record, and decode it into a type-erased RecordRef.
// *DbnScanner satisfies this via Next/DecodeRecordRef.
type RecordRefSource interface {
	Next() bool
	DecodeRecordRef() (RecordRef, error)
}

// SchemaFilter wraps a RecordRefSource and skips records whose rtype doesn't match
// the configured schema, useful when a single stream mixes schemas (as live data
// does) but a consumer only wants one. Filters are transparent to errors: a decode
// error from the underlying source stops iteration rather than being skipped, and
// is available afterward via Error().
type SchemaFilter struct {
	source  RecordRefSource
	rtype   *RType // nil means "no filtering"
	pending RecordRef
	err     error
}

// NewSchemaFilter wraps source, patching metadata's Schema field to reflect the
// filter if metadata is non-nil. Pass a nil schema to pass every record through.
func NewSchemaFilter(source RecordRefSource, metadata *Metadata, schema *Schema) *SchemaFilter {
	if metadata != nil && schema != nil {
		metadata.Schema = *schema
	}
	return NewSchemaFilterNoMetadata(source, schema)
}

// NewSchemaFilterNoMetadata is like NewSchemaFilter but never touches metadata,
// for callers that have already encoded/forwarded it elsewhere.
func NewSchemaFilterNoMetadata(source RecordRefSource, schema *Schema) *SchemaFilter {
	f := &SchemaFilter{source: source}
	if schema != nil {
		rt := RTypeFromSchema(*schema)
		f.rtype = &rt
	}
	return f
}

// Next advances to the next record matching the filter's schema, returning false
// once the underlying source is exhausted or a decode error occurs. A decode
// error is not skipped; it stops iteration and is reported via Error().
func (f *SchemaFilter) Next() bool {
	for f.source.Next() {
		ref, err := f.source.DecodeRecordRef()
		if err != nil {
			f.err = err
			return false
		}
		if f.rtype == nil || *f.rtype == ref.RType() {
			f.pending = ref
			return true
		}
	}
	return false
}

// Error returns the error that stopped the most recent Next() call, if any.
func (f *SchemaFilter) Error() error {
	return f.err
}

// DecodeRecordRef returns the record matched by the most recent Next() call, or
// the error that stopped it.
func (f *SchemaFilter) DecodeRecordRef() (RecordRef, error) {
	return f.pending, f.err
}

///////////////////////////////////////////////////////////////////////////////

// LimitFilter wraps a RecordRefSource and stops after a fixed number of records,
// regardless of how many remain in the underlying source. Filters are transparent
// to errors: a decode error from the underlying source stops iteration rather
// than being mistaken for a clean end-of-stream, and is available afterward via
// Error().
type LimitFilter struct {
	source      RecordRefSource
	limit       uint64 // 0 means unlimited
	recordCount uint64
	pending     RecordRef
	err         error
}

// NewLimitFilter wraps source, lowering metadata.Limit to the minimum of its
// current value and limit (0 means "no limit" on both sides).
func NewLimitFilter(source RecordRefSource, metadata *Metadata, limit uint64) *LimitFilter {
	if metadata != nil && limit != 0 {
		if metadata.Limit == 0 || limit < metadata.Limit {
			metadata.Limit = limit
		}
	}
	return NewLimitFilterNoMetadata(source, limit)
}

// NewLimitFilterNoMetadata is like NewLimitFilter but never touches metadata.
func NewLimitFilterNoMetadata(source RecordRefSource, limit uint64) *LimitFilter {
	return &LimitFilter{source: source, limit: limit}
}

// Next advances to the next record, returning false once the limit is reached,
// the underlying source is exhausted, or a decode error occurs. A decode error
// is not mistaken for end-of-stream; it stops iteration and is reported via
// Error().
func (f *LimitFilter) Next() bool {
	if f.limit != 0 && f.recordCount >= f.limit {
		return false
	}
	if !f.source.Next() {
		return false
	}
	ref, err := f.source.DecodeRecordRef()
	if err != nil {
		f.err = err
		return false
	}
	f.pending = ref
	f.recordCount++
	return true
}

// Error returns the error that stopped the most recent Next() call, if any.
func (f *LimitFilter) Error() error {
	return f.err
}

// DecodeRecordRef returns the record matched by the most recent Next() call, or
// the error that stopped it.
func (f *LimitFilter) DecodeRecordRef() (RecordRef, error) {
	return f.pending, f.err
}
