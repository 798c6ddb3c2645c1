package reports

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ipamo/vmware-reporter/internal/tabular"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/ubuntu/decorate"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// Networks builds the network report covering standard networks, distributed
// portgroups and distributed switches, one row per matched object sorted by
// name. Portgroup rows carry their VLAN and owning switch.
func (r *Reporter) Networks(ctx context.Context, search vcenter.Search) (t *tabular.Table, err error) {
	defer decorate.OnError(&err, "could not build the network report")

	match, err := search.Compile()
	if err != nil {
		return nil, err
	}

	var nets []mo.Network
	if err := r.client.Retrieve(ctx, []string{"Network"}, []string{"name", "vm"}, &nets); err != nil {
		return nil, err
	}
	var portgroups []mo.DistributedVirtualPortgroup
	if err := r.client.Retrieve(ctx, []string{"DistributedVirtualPortgroup"}, []string{"config"}, &portgroups); err != nil {
		return nil, err
	}
	var switches []mo.DistributedVirtualSwitch
	if err := r.client.Retrieve(ctx, []string{"DistributedVirtualSwitch"}, []string{"name", "summary"}, &switches); err != nil {
		return nil, err
	}
	switchNames, err := r.entityNames(ctx, "DistributedVirtualSwitch")
	if err != nil {
		return nil, err
	}

	type portgroupInfo struct {
		vlan       string
		switchName string
	}
	pgInfo := make(map[types.ManagedObjectReference]portgroupInfo, len(portgroups))
	for _, pg := range portgroups {
		var info portgroupInfo
		if setting, ok := pg.Config.DefaultPortConfig.(*types.VMwareDVSPortSetting); ok {
			info.vlan = vlanString(setting.Vlan)
		}
		if pg.Config.DistributedVirtualSwitch != nil {
			info.switchName = switchNames[*pg.Config.DistributedVirtualSwitch]
		}
		pgInfo[pg.Self] = info
	}

	type entry struct {
		name       string
		ref        types.ManagedObjectReference
		vlan       string
		switchName string
		vms        int
	}
	entries := make([]entry, 0, len(nets)+len(switches))
	for _, n := range nets {
		info := pgInfo[n.Self]
		entries = append(entries, entry{name: n.Name, ref: n.Self, vlan: info.vlan, switchName: info.switchName, vms: len(n.Vm)})
	}
	for _, dvs := range switches {
		entries = append(entries, entry{name: dvs.Name, ref: dvs.Self, vms: len(dvs.Summary.Vm)})
	}
	entries = selectEntities(entries, match, func(e entry) (string, types.ManagedObjectReference) { return e.name, e.ref })

	t = &tabular.Table{
		Title:   "nets",
		Headers: []string{"name", "ref", "kind", "vlan", "switch", "vms"},
	}
	for _, e := range entries {
		t.Rows = append(t.Rows, []any{e.name, e.ref.Value, e.ref.Type, e.vlan, e.switchName, e.vms})
	}
	return t, nil
}

// vlanString renders the VLAN of a portgroup setting: a single ID, trunk
// ranges or a private VLAN. Untagged portgroups render empty.
func vlanString(spec types.BaseVmwareDistributedVirtualSwitchVlanSpec) string {
	switch spec := spec.(type) {
	case *types.VmwareDistributedVirtualSwitchVlanIdSpec:
		if spec.VlanId == 0 {
			return ""
		}
		return strconv.Itoa(int(spec.VlanId))
	case *types.VmwareDistributedVirtualSwitchTrunkVlanSpec:
		parts := make([]string, 0, len(spec.VlanId))
		for _, r := range spec.VlanId {
			if r.Start == r.End {
				parts = append(parts, strconv.Itoa(int(r.Start)))
				continue
			}
			parts = append(parts, fmt.Sprintf("%d-%d", r.Start, r.End))
		}
		return strings.Join(parts, ",")
	case *types.VmwareDistributedVirtualSwitchPvlanSpec:
		return fmt.Sprintf("pvlan %d", spec.PvlanId)
	default:
		return ""
	}
}
