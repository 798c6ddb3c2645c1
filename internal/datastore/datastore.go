// Package datastore walks datastores through the DatastoreBrowser API,
// aggregates per-path statistics and transfers files over the vCenter
// HTTP file endpoint.
package datastore

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/ubuntu/decorate"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/units"
	"github.com/vmware/govmomi/vim25/types"
)

const (
	// NatureFolder marks a directory element.
	NatureFolder = "Folder"
	// NatureFile marks a plain file element. Files recognized by the vCenter
	// (disks, ISO images, VM configurations, ...) carry their own nature.
	NatureFile = "File"

	// FoldersPattern is the search pattern selecting folders only.
	FoldersPattern = "#folders"
)

// Explorer browses and manipulates the datastores of an open session.
type Explorer struct {
	log    *slog.Logger
	client *vcenter.Client
}

// New returns an Explorer bound to client.
func New(l *slog.Logger, client *vcenter.Client) *Explorer {
	return &Explorer{log: l, client: client}
}

// Query selects the elements returned by a datastore browse.
type Query struct {
	// Path restricts the browse to a folder, relative to the datastore root.
	Path string

	// Pattern keeps only matching file names. FoldersPattern switches the
	// query to folders only.
	Pattern string

	// MaxDepth bounds the recursion. Zero browses every subfolder at once.
	MaxDepth int

	// CaseSensitive disables the case insensitive matching of Path and
	// Pattern.
	CaseSensitive bool

	// Size, Mtime and Owner select the file details to retrieve.
	Size, Mtime, Owner bool
}

// FullQuery returns a Query retrieving every file detail.
func FullQuery() Query {
	return Query{Size: true, Mtime: true, Owner: true}
}

// Element is a file or folder of a datastore.
type Element struct {
	Datastore string
	Path      string // relative to the datastore root
	Nature    string
	Size      units.ByteSize
	Mtime     time.Time
	Owner     string
}

// Elements browses ds and returns its files and folders. Without a depth
// bound the whole tree is fetched in a single search task; a bound browses
// one folder per task and recurses into folders while depth remains.
func (e *Explorer) Elements(ctx context.Context, ds vcenter.Datastore, q Query) (elements []Element, err error) {
	defer decorate.OnError(&err, "could not browse datastore %s", ds.Name)

	browser, err := ds.Object.Browser(ctx)
	if err != nil {
		return nil, err
	}

	start := cleanPath(q.Path)
	if q.MaxDepth > 0 {
		return e.searchFolder(ctx, browser, ds, q, start, q.MaxDepth)
	}

	task, err := browser.SearchDatastoreSubFolders(ctx, ds.Object.Path(start), q.searchSpec())
	if err != nil {
		return nil, err
	}
	info, err := task.WaitForResult(ctx)
	if err != nil {
		return nil, err
	}

	results, ok := info.Result.(types.ArrayOfHostDatastoreBrowserSearchResults)
	if !ok {
		return nil, fmt.Errorf("unexpected search result type %T", info.Result)
	}
	for _, result := range results.HostDatastoreBrowserSearchResults {
		for _, file := range result.File {
			elements = append(elements, newElement(ds.Name, result.FolderPath, file))
		}
	}
	return elements, nil
}

// searchFolder lists one folder and recurses into its subfolders while depth
// remains.
func (e *Explorer) searchFolder(ctx context.Context, browser *object.HostDatastoreBrowser, ds vcenter.Datastore, q Query, path string, depth int) ([]Element, error) {
	task, err := browser.SearchDatastore(ctx, ds.Object.Path(path), q.searchSpec())
	if err != nil {
		return nil, err
	}
	info, err := task.WaitForResult(ctx)
	if err != nil {
		return nil, err
	}

	result, ok := info.Result.(types.HostDatastoreBrowserSearchResults)
	if !ok {
		return nil, fmt.Errorf("unexpected search result type %T", info.Result)
	}

	var elements []Element
	for _, file := range result.File {
		element := newElement(ds.Name, result.FolderPath, file)
		elements = append(elements, element)
		if element.Nature != NatureFolder || depth <= 1 {
			continue
		}
		sub, err := e.searchFolder(ctx, browser, ds, q, element.Path, depth-1)
		if err != nil {
			return nil, err
		}
		elements = append(elements, sub...)
	}
	return elements, nil
}

func (q Query) searchSpec() *types.HostDatastoreBrowserSearchSpec {
	spec := &types.HostDatastoreBrowserSearchSpec{
		SearchCaseInsensitive: types.NewBool(!q.CaseSensitive),
	}

	if q.Size || q.Mtime || q.Owner {
		spec.Details = &types.FileQueryFlags{
			FileSize:     q.Size,
			Modification: q.Mtime,
			FileOwner:    types.NewBool(q.Owner),
		}
	}

	switch {
	case q.Pattern == FoldersPattern:
		spec.Query = []types.BaseFileQuery{&types.FolderFileQuery{}}
	case q.Pattern != "":
		spec.MatchPattern = []string{q.Pattern}
	}

	return spec
}

func newElement(datastore, folderPath string, info types.BaseFileInfo) Element {
	file := info.GetFileInfo()
	element := Element{
		Datastore: datastore,
		Path:      relativePath(datastore, folderPath, file.Path),
		Nature:    natureOf(info),
		Size:      units.ByteSize(file.FileSize),
		Owner:     file.Owner,
	}
	if file.Modification != nil {
		element.Mtime = *file.Modification
	}
	return element
}

// relativePath joins a search result folder path ("[name] folder/") with a
// file name, stripping the datastore prefix.
func relativePath(datastore, folderPath, filePath string) string {
	prefix := strings.TrimPrefix(folderPath, "["+datastore+"]")
	prefix = strings.TrimPrefix(prefix, " ")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + filePath
}

// natureOf names the concrete FileInfo type: Folder, File, or the trimmed
// type name for specialized files (IsoImage, VmDisk, VmConfig, ...).
func natureOf(info types.BaseFileInfo) string {
	switch info.(type) {
	case *types.FolderFileInfo:
		return NatureFolder
	case *types.FileInfo:
		return NatureFile
	default:
		return strings.TrimSuffix(reflect.TypeOf(info).Elem().Name(), "FileInfo")
	}
}

// cleanPath trims the separators surrounding a datastore path.
func cleanPath(path string) string {
	return strings.Trim(path, `/\`)
}
