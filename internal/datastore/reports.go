package datastore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ipamo/vmware-reporter/internal/tabular"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/ubuntu/decorate"
)

// ElementsReport browses every matched datastore and lists its elements,
// sorted by path. A datastore that cannot be browsed is logged and skipped.
func (e *Explorer) ElementsReport(ctx context.Context, search vcenter.Search, q Query) (t *tabular.Table, err error) {
	defer decorate.OnError(&err, "could not report datastore elements")

	t = &tabular.Table{
		Title:   "datastore elements",
		Headers: []string{"datastore", "path", "nature", "size", "mtime", "owner"},
	}

	stores, err := e.client.Datastores(ctx, search)
	if err != nil {
		return nil, err
	}
	for _, ds := range stores {
		e.log.Info("Analyzing datastore", "datastore", ds.Name)
		elements, err := e.Elements(ctx, ds, q)
		if err != nil {
			e.log.Warn("Skipping datastore", "datastore", ds.Name, "error", err)
			continue
		}
		slices.SortFunc(elements, func(a, b Element) int { return strings.Compare(a.Path, b.Path) })
		for _, el := range elements {
			t.Rows = append(t.Rows, []any{el.Datastore, el.Path, el.Nature, el.Size, el.Mtime, el.Owner})
		}
	}
	return t, nil
}

// StatsReport browses every matched datastore and aggregates its elements
// into per-path statistics. A datastore that cannot be browsed is logged and
// skipped.
func (e *Explorer) StatsReport(ctx context.Context, search vcenter.Search, q Query) (t *tabular.Table, err error) {
	defer decorate.OnError(&err, "could not report datastore stats")

	t = &tabular.Table{
		Title: "datastore stats",
		Headers: []string{"datastore", "path", "nature", "size", "mtime", "owner",
			"depth", "dir_count", "file_count", "other_count"},
	}

	stores, err := e.client.Datastores(ctx, search)
	if err != nil {
		return nil, err
	}
	for _, ds := range stores {
		e.log.Info("Analyzing datastore", "datastore", ds.Name)
		stats, err := e.Stats(ctx, ds, q)
		if err != nil {
			e.log.Warn("Skipping datastore", "datastore", ds.Name, "error", err)
			continue
		}
		for _, s := range stats {
			t.Rows = append(t.Rows, []any{s.Datastore, s.Path, s.Nature, s.Size, s.Mtime, s.Owner,
				s.Depth, s.Dirs, s.Files, s.Others})
		}
	}
	return t, nil
}

// Resolve returns the single datastore named name.
func (e *Explorer) Resolve(ctx context.Context, name string) (vcenter.Datastore, error) {
	stores, err := e.client.Datastores(ctx, vcenter.Search{Terms: []string{name}})
	if err != nil {
		return vcenter.Datastore{}, err
	}
	switch len(stores) {
	case 1:
		return stores[0], nil
	case 0:
		return vcenter.Datastore{}, fmt.Errorf("%w: datastore %q", vcenter.ErrNotFound, name)
	default:
		return vcenter.Datastore{}, fmt.Errorf("%w: datastore %q", vcenter.ErrSeveralFound, name)
	}
}
