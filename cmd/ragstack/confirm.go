// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/juju/cmd/v3"
)

// userConfirmYes prompts on stdout and reports whether the reply on
// stdin is affirmative. Anything but y/yes, a closed stdin included,
// declines.
func userConfirmYes(ctx *cmd.Context) bool {
	fmt.Fprint(ctx.Stdout, "Do you want to continue? (y/N) ")
	scanner := bufio.NewScanner(ctx.Stdin)
	if !scanner.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return true
	}
	return false
}
