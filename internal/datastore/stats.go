package datastore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/ipamo/vmware-reporter/internal/constants"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/vmware/govmomi/units"
)

// Stat aggregates the elements sharing a path prefix.
type Stat struct {
	Datastore string
	Path      string
	Nature    string // set when an element sits exactly at Path
	Size      units.ByteSize
	Mtime     time.Time
	Owner     string // owner of every element, or constants.MultiOwner
	Depth     int    // deepest element under Path
	Dirs      int
	Files     int
	Others    int
}

// Stats browses ds without a depth bound and aggregates the elements into
// per-path statistics. The query depth truncates the aggregation paths only,
// not the traversal; detail flags are forced on, the aggregation needs them.
func (e *Explorer) Stats(ctx context.Context, ds vcenter.Datastore, q Query) ([]Stat, error) {
	full := FullQuery()
	full.Path = q.Path
	full.Pattern = q.Pattern
	full.CaseSensitive = q.CaseSensitive

	elements, err := e.Elements(ctx, ds, full)
	if err != nil {
		return nil, err
	}
	return Aggregate(elements, q.MaxDepth), nil
}

// Aggregate folds elements into one Stat per path truncated to maxDepth
// components, sorted by path. Zero or negative maxDepth keeps full paths.
func Aggregate(elements []Element, maxDepth int) []Stat {
	stats := make(map[string]*Stat)
	owned := make(map[string]bool)

	for _, element := range elements {
		parts := strings.Split(element.Path, "/")
		depth := len(parts)
		statPath := element.Path
		if maxDepth > 0 && depth > maxDepth {
			statPath = strings.Join(parts[:maxDepth], "/")
		}

		stat, ok := stats[statPath]
		if !ok {
			stat = &Stat{Datastore: element.Datastore, Path: statPath}
			stats[statPath] = stat
		}

		stat.Size += element.Size
		if element.Mtime.After(stat.Mtime) {
			stat.Mtime = element.Mtime
		}
		if !owned[statPath] {
			stat.Owner = element.Owner
			owned[statPath] = true
		} else if stat.Owner != element.Owner {
			stat.Owner = constants.MultiOwner
		}
		if depth > stat.Depth {
			stat.Depth = depth
		}
		if element.Path == statPath {
			stat.Nature = element.Nature
		}

		switch element.Nature {
		case NatureFolder:
			stat.Dirs++
		case NatureFile:
			stat.Files++
		default:
			stat.Others++
		}
	}

	out := make([]Stat, 0, len(stats))
	for _, stat := range stats {
		out = append(out, *stat)
	}
	slices.SortFunc(out, func(a, b Stat) int { return strings.Compare(a.Path, b.Path) })
	return out
}
