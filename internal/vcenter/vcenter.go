// Package vcenter wraps the vSphere API session and the managed object
// lookups shared by all reports.
package vcenter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ipamo/vmware-reporter/internal/settings"
	"github.com/ubuntu/decorate"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/vapi/rest"
	"github.com/vmware/govmomi/vapi/tags"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/soap"
)

// Client is an authenticated vCenter session.
type Client struct {
	name string
	log  *slog.Logger

	govmomi *govmomi.Client
	vim     *vim25.Client
	user    *url.Userinfo

	rest *rest.Client
	tags *tags.Manager
}

// Connect opens a session on the vCenter designated by conn.
//
// The host may be a bare name, a host:port or a full URL. Bare hosts are
// completed to https://host/sdk.
func Connect(ctx context.Context, l *slog.Logger, conn settings.Connection) (c *Client, err error) {
	defer decorate.OnError(&err, "could not connect to vCenter %q", conn.Host)

	u, err := soap.ParseURL(conn.Host)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("empty host")
	}
	if conn.User != "" {
		u.User = url.UserPassword(conn.User, conn.Password)
	}

	l.Info("Connecting to vCenter", "name", conn.Name, "url", u.Redacted())
	gc, err := govmomi.NewClient(ctx, u, conn.Insecure)
	if err != nil {
		return nil, err
	}

	return &Client{
		name:    conn.Name,
		log:     l,
		govmomi: gc,
		vim:     gc.Client,
		user:    u.User,
	}, nil
}

// Name returns the profile name of the connection, used in output path masks.
func (c *Client) Name() string {
	return c.name
}

// Vim returns the underlying vim25 client.
func (c *Client) Vim() *vim25.Client {
	return c.vim
}

// Close terminates the vCenter session. Logout failures are logged, not
// returned: the session would expire on its own.
func (c *Client) Close(ctx context.Context) {
	if c.rest != nil {
		if err := c.rest.Logout(ctx); err != nil {
			c.log.Warn("Failed to log out of the tagging endpoint", "error", err)
		}
	}
	if err := c.govmomi.Logout(ctx); err != nil {
		c.log.Warn("Failed to log out of vCenter", "vcenter", c.name, "error", err)
	}
}

// TagManager returns a tagging API client, logging in on first use.
func (c *Client) TagManager(ctx context.Context) (*tags.Manager, error) {
	if c.tags != nil {
		return c.tags, nil
	}

	rc := rest.NewClient(c.vim)
	if err := rc.Login(ctx, c.user); err != nil {
		return nil, fmt.Errorf("could not log in to the tagging endpoint: %w", err)
	}
	c.rest = rc
	c.tags = tags.NewManager(rc)
	return c.tags, nil
}
