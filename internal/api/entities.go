package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/digitalWestie/tutanota-cli/internal/wire"
)

const (
	// GeneratedMinID and GeneratedMaxID are the range-query sentinels
	// spanning the full id space; both are twelve characters.
	GeneratedMinID = "------------"
	GeneratedMaxID = "zzzzzzzzzzzz"
)

// LoadEntity fetches a single element- or tuple-addressed entity.
// id is either a bare element id, or "listId/elementId" for a tuple id.
func (c *Client) LoadEntity(ctx context.Context, typeName, id string) (wire.Instance, error) {
	tm, err := lookupType(typeName)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/rest/%s/%s/%s", tm.App, tm.PathSegment(), id)

	var inst wire.Instance
	if err := c.Do(ctx, "GET", path, tm.Version, nil, &inst); err != nil {
		return nil, fmt.Errorf("load %s %s: %w", typeName, id, err)
	}
	return inst, nil
}

// LoadRange fetches a page of a list-typed entity's elements.
func (c *Client) LoadRange(ctx context.Context, typeName, listID, start string, count int, reverse bool) ([]wire.Instance, error) {
	tm, err := lookupType(typeName)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/rest/%s/%s/%s?start=%s&count=%d&reverse=%s",
		tm.App, tm.PathSegment(), listID,
		url.QueryEscape(start), count, strconv.FormatBool(reverse))

	var insts []wire.Instance
	if err := c.Do(ctx, "GET", path, tm.Version, nil, &insts); err != nil {
		return nil, fmt.Errorf("load range %s in list %s: %w", typeName, listID, err)
	}
	return insts, nil
}

func lookupType(typeName string) (*wire.TypeModel, error) {
	tm, ok := wire.Registry[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", typeName)
	}
	return tm, nil
}
