package vcenter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ubuntu/decorate"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/view"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

var (
	// ErrNotFound is returned when a lookup matches no object.
	ErrNotFound = errors.New("no object found")
	// ErrSeveralFound is returned when a unique lookup matches several objects.
	ErrSeveralFound = errors.New("several objects found")
)

// Object is the identity of a managed entity.
type Object struct {
	Name string
	Ref  types.ManagedObjectReference
}

// Datastore couples a datastore with the datacenter owning it, as required
// by the file and browse operations.
type Datastore struct {
	Name       string
	Ref        types.ManagedObjectReference
	Object     *object.Datastore
	Datacenter *object.Datacenter
}

// Retrieve fills dst with the requested properties of every object of the
// given kinds, found anywhere under the root folder. A nil props slice
// retrieves all properties.
func (c *Client) Retrieve(ctx context.Context, objKinds []string, props []string, dst any) (err error) {
	defer decorate.OnError(&err, "could not retrieve %s objects", strings.Join(objKinds, ", "))

	m := view.NewManager(c.vim)
	v, err := m.CreateContainerView(ctx, c.vim.ServiceContent.RootFolder, objKinds, true)
	if err != nil {
		return err
	}
	defer func() {
		if derr := v.Destroy(ctx); derr != nil {
			c.log.Debug("Failed to destroy container view", "error", derr)
		}
	}()

	return v.Retrieve(ctx, objKinds, props, dst)
}

// List enumerates the objects of the given kind selected by search, sorted
// by name.
func (c *Client) List(ctx context.Context, kind string, search Search) ([]Object, error) {
	match, err := search.Compile()
	if err != nil {
		return nil, err
	}

	var entities []mo.ManagedEntity
	if err := c.Retrieve(ctx, []string{kind}, []string{"name"}, &entities); err != nil {
		return nil, err
	}

	objects := make([]Object, 0, len(entities))
	for _, e := range entities {
		if !match(e.Name, e.Self) {
			continue
		}
		objects = append(objects, Object{Name: e.Name, Ref: e.Self})
	}
	SortObjects(objects)
	return objects, nil
}

// SortObjects orders objects by name, then by reference for ties.
func SortObjects(objects []Object) {
	slices.SortFunc(objects, func(a, b Object) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(a.Ref.Value, b.Ref.Value)
	})
}

// InventoryPath returns the slash separated inventory path of ref, e.g.
// "/DC0/vm/web01". The hidden root folder is not part of the path.
func (c *Client) InventoryPath(ctx context.Context, ref types.ManagedObjectReference) (string, error) {
	ancestors, err := mo.Ancestors(ctx, c.vim, c.vim.ServiceContent.PropertyCollector, ref)
	if err != nil {
		return "", fmt.Errorf("could not resolve the inventory path of %s: %w", ref.Value, err)
	}

	parts := make([]string, 0, len(ancestors))
	for _, e := range ancestors {
		if e.Parent == nil {
			continue
		}
		parts = append(parts, e.Name)
	}
	return "/" + strings.Join(parts, "/"), nil
}

// FindByUUID returns the single VM or host carrying uuid. Every datacenter
// is searched, first for VM instance UUIDs, then VM BIOS UUIDs, then host
// hardware UUIDs. Zero or several matches are errors.
func (c *Client) FindByUUID(ctx context.Context, uuid string) (Object, error) {
	var dcs []mo.Datacenter
	if err := c.Retrieve(ctx, []string{"Datacenter"}, []string{"name"}, &dcs); err != nil {
		return Object{}, err
	}

	si := object.NewSearchIndex(c.vim)
	seen := make(map[types.ManagedObjectReference]struct{})
	var found []types.ManagedObjectReference
	for _, dc := range dcs {
		datacenter := object.NewDatacenter(c.vim, dc.Self)
		probes := []struct {
			vmSearch     bool
			instanceUUID *bool
		}{
			{vmSearch: true, instanceUUID: types.NewBool(true)},
			{vmSearch: true, instanceUUID: types.NewBool(false)},
			{vmSearch: false},
		}
		for _, p := range probes {
			ref, err := si.FindByUuid(ctx, datacenter, uuid, p.vmSearch, p.instanceUUID)
			if err != nil {
				return Object{}, fmt.Errorf("UUID search failed in datacenter %s: %w", dc.Name, err)
			}
			if ref == nil {
				continue
			}
			if _, ok := seen[ref.Reference()]; ok {
				continue
			}
			seen[ref.Reference()] = struct{}{}
			found = append(found, ref.Reference())
		}
	}

	switch len(found) {
	case 0:
		return Object{}, fmt.Errorf("%w for UUID %q", ErrNotFound, uuid)
	case 1:
	default:
		return Object{}, fmt.Errorf("%w for UUID %q", ErrSeveralFound, uuid)
	}

	var entities []mo.ManagedEntity
	pc := property.DefaultCollector(c.vim)
	if err := pc.Retrieve(ctx, found, []string{"name"}, &entities); err != nil {
		return Object{}, fmt.Errorf("could not read the name of %s: %w", found[0].Value, err)
	}
	obj := Object{Ref: found[0]}
	if len(entities) > 0 {
		obj.Name = entities[0].Name
	}
	return obj, nil
}

// Datastores enumerates the datastores selected by search, each resolved
// against its datacenter. Datastores that cannot be resolved are logged and
// skipped.
func (c *Client) Datastores(ctx context.Context, search Search) ([]Datastore, error) {
	match, err := search.Compile()
	if err != nil {
		return nil, err
	}

	var mods []mo.Datastore
	if err := c.Retrieve(ctx, []string{"Datastore"}, []string{"name"}, &mods); err != nil {
		return nil, err
	}

	stores := make([]Datastore, 0, len(mods))
	for _, mod := range mods {
		if !match(mod.Name, mod.Self) {
			continue
		}
		ds, err := c.resolveDatastore(ctx, mod)
		if err != nil {
			c.log.Warn("Skipping datastore", "name", mod.Name, "ref", mod.Self.Value, "error", err)
			continue
		}
		stores = append(stores, ds)
	}
	slices.SortFunc(stores, func(a, b Datastore) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(a.Ref.Value, b.Ref.Value)
	})
	return stores, nil
}

func (c *Client) resolveDatastore(ctx context.Context, mod mo.Datastore) (Datastore, error) {
	ancestors, err := mo.Ancestors(ctx, c.vim, c.vim.ServiceContent.PropertyCollector, mod.Self)
	if err != nil {
		return Datastore{}, err
	}

	var dc *object.Datacenter
	var parts []string
	var dcPath string
	for _, e := range ancestors {
		if e.Parent == nil {
			continue
		}
		parts = append(parts, e.Name)
		if e.Self.Type == "Datacenter" {
			dc = object.NewDatacenter(c.vim, e.Self)
			dcPath = "/" + strings.Join(parts, "/")
		}
	}
	if dc == nil {
		return Datastore{}, fmt.Errorf("no datacenter above datastore %s", mod.Name)
	}

	ds := object.NewDatastore(c.vim, mod.Self)
	ds.InventoryPath = "/" + strings.Join(parts, "/")
	ds.DatacenterPath = dcPath
	return Datastore{Name: mod.Name, Ref: mod.Self, Object: ds, Datacenter: dc}, nil
}
