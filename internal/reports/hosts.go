package reports

import (
	"context"

	"github.com/ipamo/vmware-reporter/internal/tabular"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/ubuntu/decorate"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// Hosts builds the hypervisor report: one row per matched host, sorted by
// name.
func (r *Reporter) Hosts(ctx context.Context, search vcenter.Search) (t *tabular.Table, err error) {
	defer decorate.OnError(&err, "could not build the host report")

	match, err := search.Compile()
	if err != nil {
		return nil, err
	}

	var hosts []mo.HostSystem
	if err := r.client.Retrieve(ctx, []string{"HostSystem"}, []string{"name", "summary", "vm", "parent"}, &hosts); err != nil {
		return nil, err
	}
	hosts = selectEntities(hosts, match, func(h mo.HostSystem) (string, types.ManagedObjectReference) { return h.Name, h.Self })

	clusterNames, err := r.entityNames(ctx, "ComputeResource")
	if err != nil {
		return nil, err
	}

	t = &tabular.Table{
		Title: "hosts",
		Headers: []string{"name", "ref", "connection", "power", "maintenance", "vendor", "model",
			"cpu_model", "sockets", "cores", "threads", "cpu_mhz", "memory_mib", "product",
			"version", "build", "cluster", "vms"},
	}

	for _, h := range hosts {
		summary := h.Summary

		var connection, power string
		var maintenance bool
		if summary.Runtime != nil {
			connection = string(summary.Runtime.ConnectionState)
			power = string(summary.Runtime.PowerState)
			maintenance = summary.Runtime.InMaintenanceMode
		}
		var vendor, model, cpuModel string
		var sockets, cores, threads int16
		var cpuMhz int32
		var memoryMiB int64
		if summary.Hardware != nil {
			vendor = summary.Hardware.Vendor
			model = summary.Hardware.Model
			cpuModel = summary.Hardware.CpuModel
			sockets = summary.Hardware.NumCpuPkgs
			cores = summary.Hardware.NumCpuCores
			threads = summary.Hardware.NumCpuThreads
			cpuMhz = summary.Hardware.CpuMhz
			memoryMiB = summary.Hardware.MemorySize / (1 << 20)
		}
		var product, version, build string
		if summary.Config.Product != nil {
			product = summary.Config.Product.Name
			version = summary.Config.Product.Version
			build = summary.Config.Product.Build
		}
		var cluster string
		if h.Parent != nil {
			cluster = clusterNames[*h.Parent]
		}

		t.Rows = append(t.Rows, []any{
			h.Name,
			h.Self.Value,
			connection,
			power,
			maintenance,
			vendor,
			model,
			cpuModel,
			sockets,
			cores,
			threads,
			cpuMhz,
			memoryMiB,
			product,
			version,
			build,
			cluster,
			len(h.Vm),
		})
	}
	return t, nil
}
