package schema

// IndexKind distinguishes the three index shapes the planner reasons about.
type IndexKind int

const (
	// IndexPartitionOnly indexes on a single partition attribute.
	IndexPartitionOnly IndexKind = iota
	// IndexPartitionAndSort indexes on a partition attribute plus a sort attribute.
	IndexPartitionAndSort
	// IndexPrimaryKey is a partition-only index over a synthesized uniqueness
	// attribute derived from `pk` and one of the table's unique attributes
	// The accounts table exposes one such index per unique
	// attribute, letting the planner treat `attr = literal` over any of
	// accountId/userName/email/phone as an indexable equality.
	IndexPrimaryKey
)

// Index describes one way the planner can reach a partition of the store
// without scanning: an equality condition on PartitionAttr (optionally
// resolved through a uniqueness prefix), and an optional range condition on
// SortAttr.
type Index struct {
	// Name is the store-side index name, empty for the table's own primary key.
	Name string
	Kind IndexKind

	// PartitionAttr is the logical attribute the planner matches with `=`.
	PartitionAttr *AttributeDescriptor
	// PhysicalPartitionColumn is the physical column the key condition is
	// expressed against. For IndexPrimaryKey indexes this is "pk" and the
	// literal is transformed through PartitionAttr.UniquenessValueFrom;
	// for GSIs it is normally equal to PartitionAttr.Name.
	PhysicalPartitionColumn string

	// SortAttr is the logical attribute usable as a range condition, or nil.
	SortAttr *AttributeDescriptor
	// PhysicalSortColumn is the physical sort column, meaningful only if
	// SortAttr is non-nil.
	PhysicalSortColumn string

	// ConsistentReadCapable marks indexes that support GetItem/Query with
	// ConsistentRead=true (only the table's own primary key, never a GSI).
	ConsistentReadCapable bool
}

// HasSort reports whether this index carries a sort-key range condition.
func (i *Index) HasSort() bool { return i.SortAttr != nil }

// TableDescriptor enumerates a table's physical name, its declared indexes,
// and the SCIM-path-to-attribute map the planner resolves filter leaves
// through.
type TableDescriptor struct {
	PhysicalName string
	Indexes      []*Index
	AttributeMap map[string]*AttributeDescriptor
}

// Resolve maps a SCIM attribute path to its descriptor.
func (t *TableDescriptor) Resolve(path string) (*AttributeDescriptor, bool) {
	attr, ok := t.AttributeMap[path]
	return attr, ok
}
