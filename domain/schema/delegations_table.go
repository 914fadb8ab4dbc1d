package schema

// Physical attribute descriptors for the `curity-delegations` table.
// Delegations are illustrative: the DAP shows the same query-planner
// pattern applied to a table whose indexes are ordinary GSIs rather than
// the accounts table's fan-out primary keys.
var (
	DelegationID            = &AttributeDescriptor{Name: "id", Kind: KindString}
	DelegationStatus        = &AttributeDescriptor{Name: "status", Kind: KindString, Sortable: true}
	DelegationOwner         = &AttributeDescriptor{Name: "owner", Kind: KindString, Sortable: true}
	DelegationClientID      = &AttributeDescriptor{Name: "clientId", Kind: KindString, Sortable: true}
	DelegationAuthCodeHash  = &AttributeDescriptor{Name: "authorizationCodeHash", Kind: KindString}
	DelegationExpires       = &AttributeDescriptor{Name: "expires", Kind: KindNumber, Sortable: true}
)

// DelegationsTableName is the physical table name.
const DelegationsTableName = "curity-delegations"

const (
	OwnerStatusIndexName    = "owner-status-index"
	ClientStatusIndexName   = "clientId-status-index"
	AuthorizationHashIndex  = "authorization-hash-index"
)

// DelegationsTable describes the delegations table's three secondary indexes.
var DelegationsTable = &TableDescriptor{
	PhysicalName: DelegationsTableName,
	Indexes: []*Index{
		{
			Name:                    OwnerStatusIndexName,
			Kind:                    IndexPartitionAndSort,
			PartitionAttr:           DelegationOwner,
			PhysicalPartitionColumn: DelegationOwner.Name,
			SortAttr:                DelegationStatus,
			PhysicalSortColumn:      DelegationStatus.Name,
		},
		{
			Name:                    ClientStatusIndexName,
			Kind:                    IndexPartitionAndSort,
			PartitionAttr:           DelegationClientID,
			PhysicalPartitionColumn: DelegationClientID.Name,
			SortAttr:                DelegationStatus,
			PhysicalSortColumn:      DelegationStatus.Name,
		},
		{
			Name:                    AuthorizationHashIndex,
			Kind:                    IndexPartitionOnly,
			PartitionAttr:           DelegationAuthCodeHash,
			PhysicalPartitionColumn: DelegationAuthCodeHash.Name,
		},
	},
	AttributeMap: map[string]*AttributeDescriptor{
		"id":                    DelegationID,
		"status":                DelegationStatus,
		"owner":                 DelegationOwner,
		"clientId":              DelegationClientID,
		"authorizationCodeHash": DelegationAuthCodeHash,
		"expires":               DelegationExpires,
	},
}
