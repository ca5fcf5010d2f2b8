// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hooks

import "context"

// PatchRunCommand substitutes the runner's command execution for tests.
func PatchRunCommand(r *Runner, run func(ctx context.Context, hook Hook, env []string) error) {
	r.runCommand = run
}
