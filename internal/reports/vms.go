package reports

import (
	"context"
	"strings"

	"github.com/ipamo/vmware-reporter/internal/tabular"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/ubuntu/decorate"
	"github.com/vmware/govmomi/units"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// VMs builds the virtual machine report: one row per matched VM, sorted by
// name, followed by the configured custom value and tag category columns.
func (r *Reporter) VMs(ctx context.Context, search vcenter.Search) (t *tabular.Table, err error) {
	defer decorate.OnError(&err, "could not build the VM report")

	match, err := search.Compile()
	if err != nil {
		return nil, err
	}

	props := []string{"name", "summary", "resourcePool", "config.hardware.device", "customValue"}
	var vms []mo.VirtualMachine
	if err := r.client.Retrieve(ctx, []string{"VirtualMachine"}, props, &vms); err != nil {
		return nil, err
	}
	vms = selectEntities(vms, match, func(vm mo.VirtualMachine) (string, types.ManagedObjectReference) { return vm.Name, vm.Self })

	hostNames, err := r.entityNames(ctx, "HostSystem")
	if err != nil {
		return nil, err
	}
	clusterNames, err := r.entityNames(ctx, "ComputeResource")
	if err != nil {
		return nil, err
	}
	owners, err := r.poolOwners(ctx)
	if err != nil {
		return nil, err
	}

	var fieldNames map[int32]string
	if len(r.extract.CustomValues) > 0 {
		if fieldNames, err = r.client.CustomFieldNames(ctx); err != nil {
			return nil, err
		}
	}
	var tags map[types.ManagedObjectReference]map[string][]string
	if len(r.extract.TagCategories) > 0 {
		refs := make([]types.ManagedObjectReference, 0, len(vms))
		for _, vm := range vms {
			refs = append(refs, vm.Self)
		}
		if tags, err = r.client.ObjectTags(ctx, refs); err != nil {
			return nil, err
		}
	}

	t = &tabular.Table{
		Title: "vms",
		Headers: []string{"name", "ref", "power", "guest_os", "cpus", "memory_mib", "disk_capacity",
			"committed", "host", "cluster", "ip_address", "tools", "template", "instance_uuid",
			"bios_uuid", "annotation"},
	}
	t.Headers = append(t.Headers, r.extract.CustomValues...)
	t.Headers = append(t.Headers, r.extract.TagCategories...)

	for _, vm := range vms {
		summary := vm.Summary

		var host string
		if summary.Runtime.Host != nil {
			host = hostNames[*summary.Runtime.Host]
		}
		var cluster string
		if vm.ResourcePool != nil {
			cluster = clusterNames[owners[*vm.ResourcePool]]
		}
		var ip, tools string
		if summary.Guest != nil {
			ip = summary.Guest.IpAddress
			tools = summary.Guest.ToolsRunningStatus
		}
		var committed units.ByteSize
		if summary.Storage != nil {
			committed = units.ByteSize(summary.Storage.Committed)
		}
		var devices []types.BaseVirtualDevice
		if vm.Config != nil {
			devices = vm.Config.Hardware.Device
		}

		row := []any{
			vm.Name,
			vm.Self.Value,
			string(summary.Runtime.PowerState),
			summary.Config.GuestFullName,
			summary.Config.NumCpu,
			summary.Config.MemorySizeMB,
			diskCapacity(devices),
			committed,
			host,
			cluster,
			ip,
			tools,
			summary.Config.Template,
			summary.Config.InstanceUuid,
			summary.Config.Uuid,
			summary.Config.Annotation,
		}
		values := customValues(vm.CustomValue, fieldNames)
		for _, name := range r.extract.CustomValues {
			row = append(row, values[name])
		}
		for _, category := range r.extract.TagCategories {
			row = append(row, strings.Join(tags[vm.Self][category], ", "))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// poolOwners maps every resource pool to its owning compute resource.
func (r *Reporter) poolOwners(ctx context.Context) (map[types.ManagedObjectReference]types.ManagedObjectReference, error) {
	var pools []mo.ResourcePool
	if err := r.client.Retrieve(ctx, []string{"ResourcePool"}, []string{"owner"}, &pools); err != nil {
		return nil, err
	}
	owners := make(map[types.ManagedObjectReference]types.ManagedObjectReference, len(pools))
	for _, p := range pools {
		owners[p.Self] = p.Owner
	}
	return owners, nil
}

// diskCapacity sums the provisioned capacity of the virtual disks.
func diskCapacity(devices []types.BaseVirtualDevice) units.ByteSize {
	var total int64
	for _, device := range devices {
		disk, ok := device.(*types.VirtualDisk)
		if !ok {
			continue
		}
		if disk.CapacityInBytes > 0 {
			total += disk.CapacityInBytes
			continue
		}
		total += disk.CapacityInKB * 1024
	}
	return units.ByteSize(total)
}

// customValues maps the custom values of an object by field name.
func customValues(values []types.BaseCustomFieldValue, names map[int32]string) map[string]string {
	out := make(map[string]string, len(values))
	for _, value := range values {
		s, ok := value.(*types.CustomFieldStringValue)
		if !ok {
			continue
		}
		out[names[s.Key]] = s.Value
	}
	return out
}
