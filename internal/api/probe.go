package api

import "context"

// ProbeSystemKeys performs an authenticated request that requires no
// entity-specific state, used by the auth orchestrator to validate a
// persisted session without side effects.
func (c *Client) ProbeSystemKeys(ctx context.Context) error {
	return c.Do(ctx, "GET", SystemKeysPath, sysModelVersion, nil, nil)
}
