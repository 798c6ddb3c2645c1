package vcenter_test

import (
	"context"
	"testing"

	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vapi/rest"
	"github.com/vmware/govmomi/vapi/tags"
	"github.com/vmware/govmomi/vim25/types"
)

func TestCustomFieldNames(t *testing.T) {
	t.Parallel()

	c, _ := connect(t)
	ctx := context.Background()

	mgr := object.NewCustomFieldsManager(c.Vim())
	def, err := mgr.Add(ctx, "environment", "VirtualMachine", nil, nil)
	require.NoError(t, err, "Setup: could not add a custom field definition")

	names, err := c.CustomFieldNames(ctx)
	require.NoError(t, err, "CustomFieldNames should not fail")
	assert.Equal(t, "environment", names[def.Key], "The definition should be mapped by key")
}

func TestObjectTags(t *testing.T) {
	t.Parallel()

	c, u := connect(t)
	ctx := context.Background()

	vms, err := c.List(ctx, "VirtualMachine", vcenter.Search{})
	require.NoError(t, err, "Setup: could not list VMs")
	require.GreaterOrEqual(t, len(vms), 2, "Setup: the simulator should provide at least two VMs")
	tagged, bare := vms[0], vms[1]

	rc := rest.NewClient(c.Vim())
	require.NoError(t, rc.Login(ctx, u.User), "Setup: could not log in to the tagging endpoint")
	tm := tags.NewManager(rc)

	catID, err := tm.CreateCategory(ctx, &tags.Category{Name: "env", Cardinality: "MULTIPLE", AssociableTypes: []string{"VirtualMachine"}})
	require.NoError(t, err, "Setup: could not create a tag category")
	for _, name := range []string{"prod", "dmz"} {
		tagID, err := tm.CreateTag(ctx, &tags.Tag{Name: name, CategoryID: catID})
		require.NoError(t, err, "Setup: could not create tag %s", name)
		require.NoError(t, tm.AttachTag(ctx, tagID, tagged.Ref), "Setup: could not attach tag %s", name)
	}

	got, err := c.ObjectTags(ctx, []types.ManagedObjectReference{tagged.Ref, bare.Ref})
	require.NoError(t, err, "ObjectTags should not fail")

	require.Contains(t, got, tagged.Ref, "The tagged VM should be reported")
	assert.Equal(t, map[string][]string{"env": {"dmz", "prod"}}, got[tagged.Ref], "Tags should be grouped by category and sorted")
	assert.Empty(t, got[bare.Ref], "The untagged VM should carry no tags")
}
