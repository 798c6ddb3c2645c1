package vcenter

import (
	"context"
	"fmt"
	"slices"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// CustomFieldNames maps the keys of the custom field definitions to their
// names. Custom values on managed objects only carry the key.
func (c *Client) CustomFieldNames(ctx context.Context) (map[int32]string, error) {
	mgr := object.NewCustomFieldsManager(c.vim)
	defs, err := mgr.Field(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list custom field definitions: %w", err)
	}

	names := make(map[int32]string, len(defs))
	for _, def := range defs {
		names[def.Key] = def.Name
	}
	return names, nil
}

// ObjectTags returns the names of the tags attached to each reference,
// grouped by category name. Tag names are sorted within a category.
func (c *Client) ObjectTags(ctx context.Context, refs []types.ManagedObjectReference) (map[types.ManagedObjectReference]map[string][]string, error) {
	tm, err := c.TagManager(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := tm.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list tag categories: %w", err)
	}
	categoryNames := make(map[string]string, len(categories))
	for _, cat := range categories {
		categoryNames[cat.ID] = cat.Name
	}

	ids := make([]mo.Reference, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref)
	}
	attached, err := tm.GetAttachedTagsOnObjects(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("could not list attached tags: %w", err)
	}

	result := make(map[types.ManagedObjectReference]map[string][]string, len(attached))
	for _, a := range attached {
		byCategory := make(map[string][]string)
		for _, tag := range a.Tags {
			name := categoryNames[tag.CategoryID]
			byCategory[name] = append(byCategory[name], tag.Name)
		}
		for _, names := range byCategory {
			slices.Sort(names)
		}
		result[a.ObjectID.Reference()] = byCategory
	}
	return result, nil
}
