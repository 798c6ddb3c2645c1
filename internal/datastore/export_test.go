package datastore

import "github.com/vmware/govmomi/vim25/types"

// Helpers exposed to the external test package.
var (
	RelativePath   = relativePath
	NatureOf       = natureOf
	CompleteTarget = completeTarget
)

// SearchSpec returns the browser search spec built from the query.
func (q Query) SearchSpec() *types.HostDatastoreBrowserSearchSpec {
	return q.searchSpec()
}
