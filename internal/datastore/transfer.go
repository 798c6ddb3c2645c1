package datastore

import (
	"context"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ipamo/vmware-reporter/internal/fileutils"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/ubuntu/decorate"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/units"
	"github.com/vmware/govmomi/vim25/soap"
)

// Download streams a datastore file to the local file system, authenticated
// by the session cookie. An empty target, or a target ending in a path
// separator, receives the remote base name.
func (e *Explorer) Download(ctx context.Context, ds vcenter.Datastore, remote, target string) (err error) {
	defer decorate.OnError(&err, "could not download %s from datastore %s", remote, ds.Name)

	remote = cleanPath(remote)
	target = completeTarget(target, remote)

	src, _, err := ds.Object.Download(ctx, remote, &soap.DefaultDownload)
	if err != nil {
		return err
	}
	defer src.Close()

	if err = fileutils.CreateParents(target); err != nil {
		return err
	}
	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	n, err := io.Copy(dst, src)
	if err != nil {
		return err
	}

	e.log.Info("Downloaded datastore file", "datastore", ds.Name, "path", remote, "target", target, "size", units.ByteSize(n))
	return nil
}

// Upload streams a local file to a datastore over HTTP PUT. An empty target,
// or a target ending in a path separator, receives the source base name.
func (e *Explorer) Upload(ctx context.Context, ds vcenter.Datastore, source, target string) (err error) {
	defer decorate.OnError(&err, "could not upload %s to datastore %s", source, ds.Name)

	target = cleanPath(completeTarget(target, source))

	f, err := os.Open(source)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	p := soap.DefaultUpload
	p.ContentLength = info.Size()
	if err = ds.Object.Upload(ctx, f, target, &p); err != nil {
		return err
	}

	e.log.Info("Uploaded file to datastore", "source", source, "datastore", ds.Name, "target", target, "size", units.ByteSize(info.Size()))
	return nil
}

// Delete removes a file or folder from a datastore. Folders are removed with
// their content.
func (e *Explorer) Delete(ctx context.Context, ds vcenter.Datastore, remote string) (err error) {
	defer decorate.OnError(&err, "could not delete %s from datastore %s", remote, ds.Name)

	remote = cleanPath(remote)
	fm := object.NewFileManager(e.client.Vim())
	task, err := fm.DeleteDatastoreFile(ctx, ds.Object.Path(remote), ds.Datacenter)
	if err != nil {
		return err
	}
	if err = task.Wait(ctx); err != nil {
		return err
	}

	e.log.Info("Deleted datastore element", "datastore", ds.Name, "path", remote)
	return nil
}

// MakeDirectory creates a folder on a datastore, with its missing parents
// when parents is set.
func (e *Explorer) MakeDirectory(ctx context.Context, ds vcenter.Datastore, remote string, parents bool) (err error) {
	defer decorate.OnError(&err, "could not create folder %s on datastore %s", remote, ds.Name)

	remote = cleanPath(remote)
	fm := object.NewFileManager(e.client.Vim())
	if err = fm.MakeDirectory(ctx, ds.Object.Path(remote), ds.Datacenter, parents); err != nil {
		return err
	}

	e.log.Info("Created datastore folder", "datastore", ds.Name, "path", remote)
	return nil
}

// completeTarget appends the source base name to targets designating a
// directory, that is an empty target or one ending in a path separator.
func completeTarget(target, source string) string {
	if target == "" || strings.HasSuffix(target, "/") || strings.HasSuffix(target, `\`) {
		return target + path.Base(strings.ReplaceAll(source, `\`, "/"))
	}
	return target
}
