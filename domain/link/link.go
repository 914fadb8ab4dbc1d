// Package link defines the link aggregate: a record connecting a locally
// managed account to an account in a remote domain, one of the DAP's "illustrative
// single-item pattern".
package link

// Attributes is the logical record LinkStore persists and retrieves,
// keyed physically by LinkedAccountID + "@" + LinkedAccountDomainName.
type Attributes struct {
	LinkedAccountID         string
	LinkedAccountDomainName string
	LocalAccountID          string
	LinkingAccountManager   string
	Created                 int64
}
