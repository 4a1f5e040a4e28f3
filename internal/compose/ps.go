// SPDX-License-Identifier: MPL-2.0

package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"davit-cli/internal/status"
)

// psRecord mirrors the per-container JSON record emitted by `compose ps
// --format json`. Only the fields the status cache consults are decoded.
type psRecord struct {
	Name    string `json:"Name"`
	State   string `json:"State"`
	Project string `json:"Project"`
}

// QueryStatus implements status.Querier by listing the service's containers
// through the compose front-end. The listing emits one JSON object per line;
// only the first line is consulted. Zero lines of output means no container
// exists for the service, reported as a nil record with no error.
func (c *Client) QueryStatus(ctx context.Context, service string) (*status.Record, error) {
	argv := append(c.GlobalArgs(""), "ps", "--format", "json", service)
	full := append(append([]string{}, c.command[1:]...), argv...)

	cmd := c.execCommand(ctx, c.command[0], full...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("compose status query for %q failed: %w", service, err)
	}

	return parseStatusOutput(stdout.String(), service)
}

// parseStatusOutput extracts the first JSON record from line-delimited
// compose ps output.
func parseStatusOutput(output, service string) (*status.Record, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec psRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("malformed status record for %q: %w", service, err)
		}
		return &status.Record{State: rec.State, Project: rec.Project}, nil
	}
	return nil, nil
}
