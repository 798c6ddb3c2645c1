package testutils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmware/govmomi/simulator"

	// Registers the vAPI endpoints used by tag extraction.
	_ "github.com/vmware/govmomi/vapi/simulator"
)

// StartVCenterSimulator starts an in-process vCenter simulator loaded with the
// default VPX inventory (datacenter DC0, cluster DC0_C0, host DC0_H0, a few
// virtual machines and the LocalDS_0 datastore backed by a temporary
// directory). It returns the endpoint URL, credentials included.
func StartVCenterSimulator(t *testing.T) *url.URL {
	t.Helper()

	model := simulator.VPX()
	require.NoError(t, model.Create(), "Setup: could not create the vCenter simulator inventory")
	t.Cleanup(model.Remove)

	model.Service.RegisterEndpoints = true
	server := model.Service.NewServer()
	t.Cleanup(server.Close)

	return server.URL
}
