package schema

// Physical attribute descriptors for the `curity-links` table.
var (
	LinkPK                     = &AttributeDescriptor{Name: "pk", Kind: KindString}
	LinkedAccountID            = &AttributeDescriptor{Name: "linkedAccountId", Kind: KindString}
	LinkedAccountDomainName    = &AttributeDescriptor{Name: "linkedAccountDomainName", Kind: KindString}
	LocalAccountID             = &AttributeDescriptor{Name: "localAccountId", Kind: KindString, Sortable: true}
	LinkingAccountManager      = &AttributeDescriptor{Name: "linkingAccountManager", Kind: KindString, Sortable: true}
	LinkCreated                = &AttributeDescriptor{Name: "created", Kind: KindNumber, Sortable: true}
)

// LinksTableName is the physical table name.
const LinksTableName = "curity-links"

// ListLinksIndexName is the secondary index supporting listLinks.
const ListLinksIndexName = "list-links-index"

// LinksTable describes the links table and its listLinks secondary index.
var LinksTable = &TableDescriptor{
	PhysicalName: LinksTableName,
	Indexes: []*Index{
		{
			Name:                    ListLinksIndexName,
			Kind:                    IndexPartitionAndSort,
			PartitionAttr:           LocalAccountID,
			PhysicalPartitionColumn: LocalAccountID.Name,
			SortAttr:                LinkingAccountManager,
			PhysicalSortColumn:      LinkingAccountManager.Name,
		},
	},
	AttributeMap: map[string]*AttributeDescriptor{
		"localAccountId":         LocalAccountID,
		"linkingAccountManager":  LinkingAccountManager,
		"linkedAccountId":        LinkedAccountID,
		"linkedAccountDomainName": LinkedAccountDomainName,
		"created":                LinkCreated,
	},
}

// LinkPKValue builds the pk value for a link item.
func LinkPKValue(linkedAccountID, linkedAccountDomainName string) string {
	return linkedAccountID + "@" + linkedAccountDomainName
}
