package schema

// Physical attribute descriptors for the `curity-accounts` table. Every
// fan-out item (main + secondary) carries all of these columns.
var (
	AccountID = &AttributeDescriptor{Name: "accountId", Kind: KindString, Sortable: true, UniquePrefix: "ai#"}
	UserName  = &AttributeDescriptor{Name: "userName", Kind: KindString, Sortable: true, UniquePrefix: "un#"}
	Email     = &AttributeDescriptor{Name: "email", Kind: KindString, Sortable: true, UniquePrefix: "em#"}
	Phone     = &AttributeDescriptor{Name: "phone", Kind: KindString, Sortable: true, UniquePrefix: "pn#"}
	Password  = &AttributeDescriptor{Name: "password", Kind: KindString}
	Active    = &AttributeDescriptor{Name: "active", Kind: KindBool}
	Created   = &AttributeDescriptor{Name: "created", Kind: KindNumber, Sortable: true}
	Updated   = &AttributeDescriptor{Name: "updated", Kind: KindNumber, Sortable: true}
	Version   = &AttributeDescriptor{Name: "version", Kind: KindNumber, Sortable: true}
	// Attributes is the opaque JSON blob carrying the open bag of additional
	// SCIM attributes. It has no comparator and is never planner-indexable;
	// it participates in item marshaling only.
	Attributes = &AttributeDescriptor{Name: "attributes", Kind: KindString}
)

// UniqueAccountAttributes lists the attributes with a fan-out uniqueness
// prefix, in the order the accounts table's primary-key indexes are declared.
var UniqueAccountAttributes = []*AttributeDescriptor{AccountID, UserName, Email, Phone}

// AccountsTableName is the physical table name.
const AccountsTableName = "curity-accounts"

// AccountsTable describes the accounts table's primary-key indexes (one per
// unique attribute) and its SCIM-path attribute map.
var AccountsTable = &TableDescriptor{
	PhysicalName: AccountsTableName,
	Indexes: []*Index{
		{Name: "", Kind: IndexPrimaryKey, PartitionAttr: AccountID, PhysicalPartitionColumn: "pk", ConsistentReadCapable: true},
		{Name: "", Kind: IndexPrimaryKey, PartitionAttr: UserName, PhysicalPartitionColumn: "pk", ConsistentReadCapable: true},
		{Name: "", Kind: IndexPrimaryKey, PartitionAttr: Email, PhysicalPartitionColumn: "pk", ConsistentReadCapable: true},
		{Name: "", Kind: IndexPrimaryKey, PartitionAttr: Phone, PhysicalPartitionColumn: "pk", ConsistentReadCapable: true},
	},
	AttributeMap: map[string]*AttributeDescriptor{
		"id":         AccountID,
		"accountId":  AccountID,
		"userName":   UserName,
		"emails":     Email,
		"email":      Email,
		"phoneNumbers": Phone,
		"phone":      Phone,
		"active":     Active,
		"meta.created":      Created,
		"created":           Created,
		"meta.lastModified": Updated,
		"updated":           Updated,
		"version":           Version,
	},
}

// UniquenessPK builds the `pk` value for the fan-out item owning attr's value.
func UniquenessPK(attr *AttributeDescriptor, value string) string {
	return attr.UniquePrefix + value
}
