// Package reports builds the inventory and operational tables exported by
// the commands: one row per managed object, flat columns mirroring the
// vendor API fields.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ipamo/vmware-reporter/internal/settings"
	"github.com/ipamo/vmware-reporter/internal/tabular"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/ubuntu/decorate"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
	"gopkg.in/yaml.v3"
)

// Reporter builds tables on an open vCenter session.
type Reporter struct {
	log     *slog.Logger
	client  *vcenter.Client
	extract settings.ExtractConfig
}

// New returns a Reporter bound to client. The extract configuration selects
// the custom value and tag category columns of the VM report.
func New(l *slog.Logger, client *vcenter.Client, extract settings.ExtractConfig) *Reporter {
	return &Reporter{log: l, client: client, extract: extract}
}

// List enumerates the objects of one kind with their inventory paths.
// Objects whose path cannot be resolved are logged and skipped.
func (r *Reporter) List(ctx context.Context, kind string, search vcenter.Search) (t *tabular.Table, err error) {
	defer decorate.OnError(&err, "could not list %s objects", kind)

	objects, err := r.client.List(ctx, kind, search)
	if err != nil {
		return nil, err
	}

	t = listTable(kind)
	for _, obj := range objects {
		path, err := r.client.InventoryPath(ctx, obj.Ref)
		if err != nil {
			r.log.Warn("Skipping object", "name", obj.Name, "ref", obj.Ref.Value, "error", err)
			continue
		}
		t.Rows = append(t.Rows, []any{obj.Name, obj.Ref.Value, obj.Ref.Type, path})
	}
	return t, nil
}

// ListUUID looks up the single VM or host carrying the UUID.
func (r *Reporter) ListUUID(ctx context.Context, uuid string) (t *tabular.Table, err error) {
	defer decorate.OnError(&err, "could not look up UUID %q", uuid)

	obj, err := r.client.FindByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	path, err := r.client.InventoryPath(ctx, obj.Ref)
	if err != nil {
		return nil, err
	}

	t = listTable(obj.Ref.Type)
	t.Rows = append(t.Rows, []any{obj.Name, obj.Ref.Value, obj.Ref.Type, path})
	return t, nil
}

func listTable(kind string) *tabular.Table {
	return &tabular.Table{
		Title:   "list_" + strings.ToLower(kind),
		Headers: []string{"name", "ref", "type", "path"},
	}
}

// sortEntities orders the slice by name, then by reference for ties.
func sortEntities[E any](list []E, id func(E) (string, types.ManagedObjectReference)) {
	slices.SortFunc(list, func(a, b E) int {
		aName, aRef := id(a)
		bName, bRef := id(b)
		if n := strings.Compare(aName, bName); n != 0 {
			return n
		}
		return strings.Compare(aRef.Value, bRef.Value)
	})
}

// selectEntities keeps the entities accepted by match, sorted by name.
func selectEntities[E any](list []E, match vcenter.Matches, id func(E) (string, types.ManagedObjectReference)) []E {
	out := make([]E, 0, len(list))
	for _, e := range list {
		if name, ref := id(e); match(name, ref) {
			out = append(out, e)
		}
	}
	sortEntities(out, id)
	return out
}

// entityNames maps every object of a kind to its name.
func (r *Reporter) entityNames(ctx context.Context, kind string) (map[types.ManagedObjectReference]string, error) {
	var entities []mo.ManagedEntity
	if err := r.client.Retrieve(ctx, []string{kind}, []string{"name"}, &entities); err != nil {
		return nil, err
	}
	names := make(map[types.ManagedObjectReference]string, len(entities))
	for _, e := range entities {
		names[e.Self] = e.Name
	}
	return names, nil
}

// Export dumps every matched object of the given kinds: all properties are
// retrieved and serialized to one JSON document passed to write. Objects
// that cannot be read are logged and skipped. Returns the number of dumps
// written.
func (r *Reporter) Export(ctx context.Context, kinds []string, search vcenter.Search, write func(obj vcenter.Object, data []byte) error) (count int, err error) {
	defer decorate.OnError(&err, "could not export objects")

	pc := property.DefaultCollector(r.client.Vim())
	for _, kind := range kinds {
		objects, err := r.client.List(ctx, kind, search)
		if err != nil {
			return count, err
		}
		for _, obj := range objects {
			data, err := dump(ctx, pc, obj)
			if err != nil {
				r.log.Warn("Skipping object", "name", obj.Name, "ref", obj.Ref.Value, "error", err)
				continue
			}
			if err := write(obj, data); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func dump(ctx context.Context, pc *property.Collector, obj vcenter.Object) ([]byte, error) {
	var content []types.ObjectContent
	if err := pc.Retrieve(ctx, []types.ManagedObjectReference{obj.Ref}, nil, &content); err != nil {
		return nil, err
	}

	doc := map[string]any{"self": obj.Ref}
	for _, c := range content {
		for _, p := range c.PropSet {
			doc[p.Name] = p.Val
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Inventory returns the whole entity tree as a YAML document. Every node key
// is "name (ref)", leaves are null, siblings are sorted by name.
func (r *Reporter) Inventory(ctx context.Context) (doc *yaml.Node, err error) {
	defer decorate.OnError(&err, "could not build the inventory tree")

	var entities []mo.ManagedEntity
	if err := r.client.Retrieve(ctx, []string{"ManagedEntity"}, []string{"name", "parent"}, &entities); err != nil {
		return nil, err
	}

	known := make(map[types.ManagedObjectReference]bool, len(entities))
	for _, e := range entities {
		known[e.Self] = true
	}
	children := make(map[types.ManagedObjectReference][]mo.ManagedEntity)
	var roots []mo.ManagedEntity
	for _, e := range entities {
		if e.Parent == nil || !known[*e.Parent] {
			roots = append(roots, e)
			continue
		}
		children[*e.Parent] = append(children[*e.Parent], e)
	}

	var add func(node *yaml.Node, list []mo.ManagedEntity)
	add = func(node *yaml.Node, list []mo.ManagedEntity) {
		slices.SortFunc(list, func(a, b mo.ManagedEntity) int {
			if n := strings.Compare(a.Name, b.Name); n != 0 {
				return n
			}
			return strings.Compare(a.Self.Value, b.Self.Value)
		})
		for _, e := range list {
			var key yaml.Node
			key.SetString(fmt.Sprintf("%s (%s)", e.Name, e.Self.Value))
			kids := children[e.Self]
			if len(kids) == 0 {
				node.Content = append(node.Content, &key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"})
				continue
			}
			sub := &yaml.Node{Kind: yaml.MappingNode}
			add(sub, kids)
			node.Content = append(node.Content, &key, sub)
		}
	}

	doc = &yaml.Node{Kind: yaml.MappingNode}
	add(doc, roots)
	return doc, nil
}
