package reports

import (
	"context"

	"github.com/ipamo/vmware-reporter/internal/tabular"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/ubuntu/decorate"
	"github.com/vmware/govmomi/units"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// Datastores builds the datastore report: one row per matched datastore,
// sorted by name.
func (r *Reporter) Datastores(ctx context.Context, search vcenter.Search) (t *tabular.Table, err error) {
	defer decorate.OnError(&err, "could not build the datastore report")

	match, err := search.Compile()
	if err != nil {
		return nil, err
	}

	var stores []mo.Datastore
	if err := r.client.Retrieve(ctx, []string{"Datastore"}, []string{"name", "summary", "host", "vm"}, &stores); err != nil {
		return nil, err
	}
	stores = selectEntities(stores, match, func(ds mo.Datastore) (string, types.ManagedObjectReference) { return ds.Name, ds.Self })

	t = &tabular.Table{
		Title: "datastores",
		Headers: []string{"name", "ref", "type", "capacity", "free", "uncommitted", "accessible",
			"maintenance", "url", "hosts", "vms"},
	}

	for _, ds := range stores {
		summary := ds.Summary
		t.Rows = append(t.Rows, []any{
			ds.Name,
			ds.Self.Value,
			summary.Type,
			units.ByteSize(summary.Capacity),
			units.ByteSize(summary.FreeSpace),
			units.ByteSize(summary.Uncommitted),
			summary.Accessible,
			summary.MaintenanceMode,
			summary.Url,
			len(ds.Host),
			len(ds.Vm),
		})
	}
	return t, nil
}
