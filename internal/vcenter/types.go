package vcenter

import (
	"fmt"
	"slices"
	"strings"
)

// Managed object kinds accepted by the enumeration commands, keyed by the
// lowercase kind name. Container views match subclasses too, so e.g.
// VmwareDistributedVirtualSwitch objects are reached through their base kind.
var kinds = map[string]string{
	"virtualmachine":              "VirtualMachine",
	"hostsystem":                  "HostSystem",
	"network":                     "Network",
	"distributedvirtualswitch":    "DistributedVirtualSwitch",
	"distributedvirtualportgroup": "DistributedVirtualPortgroup",
	"opaquenetwork":               "OpaqueNetwork",
	"datastore":                   "Datastore",
	"storagepod":                  "StoragePod",
	"datacenter":                  "Datacenter",
	"clustercomputeresource":      "ClusterComputeResource",
	"computeresource":             "ComputeResource",
	"resourcepool":                "ResourcePool",
	"virtualapp":                  "VirtualApp",
	"folder":                      "Folder",
}

// Short aliases for the most used kinds.
var aliases = map[string]string{
	"vm":        "VirtualMachine",
	"host":      "HostSystem",
	"net":       "Network",
	"dvs":       "DistributedVirtualSwitch",
	"dvp":       "DistributedVirtualPortgroup",
	"portgroup": "DistributedVirtualPortgroup",
	"ds":        "Datastore",
	"dc":        "Datacenter",
	"cluster":   "ClusterComputeResource",
	"pool":      "ResourcePool",
	"respool":   "ResourcePool",
}

// ResolveKind maps a user supplied type name or alias to a managed object
// kind. Matching is case insensitive.
func ResolveKind(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if kind, ok := aliases[key]; ok {
		return kind, nil
	}
	if kind, ok := kinds[key]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("unsupported object type %q (accepted: %s)", name, strings.Join(KindAliases(), ", "))
}

// KindAliases returns the sorted list of accepted short aliases.
func KindAliases() []string {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
