// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package hooks runs the shell scripts wired to deployment lifecycle
// events by a YAML descriptor.
package hooks

import (
	"os"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gopkg.in/yaml.v2"
)

var logger = loggo.GetLogger("ragstack.hooks")

// Lifecycle event names, in execution order.
const (
	PrePackage    = "prepackage"
	PostProvision = "postprovision"
)

// knownEvents lists the events a descriptor may wire, in the order
// they fire during a deployment.
var knownEvents = []string{PrePackage, PostProvision}

// Hook describes one script bound to a lifecycle event.
type Hook struct {
	// Run is the script to execute.
	Run string `yaml:"run"`

	// Shell is the interpreter; "sh" when empty.
	Shell string `yaml:"shell,omitempty"`

	// Dir is the working directory; the descriptor's directory
	// when empty.
	Dir string `yaml:"dir,omitempty"`

	// ContinueOnError suppresses failure propagation for this hook.
	ContinueOnError bool `yaml:"continueOnError,omitempty"`
}

// Descriptor wires lifecycle events to hooks.
type Descriptor struct {
	Hooks map[string]Hook `yaml:"hooks"`
}

// ReadDescriptor loads and validates a lifecycle descriptor.
func ReadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotate(err, "reading lifecycle descriptor")
	}
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.Annotate(err, "parsing lifecycle descriptor")
	}
	if err := d.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &d, nil
}

// Validate checks that only known events are wired and every hook
// names a script.
func (d *Descriptor) Validate() error {
	for event, hook := range d.Hooks {
		if !isKnownEvent(event) {
			return errors.NotValidf("lifecycle event %q", event)
		}
		if hook.Run == "" {
			return errors.NotValidf("hook for %q with no script", event)
		}
	}
	return nil
}

// Ordered returns the wired events in execution order.
func (d *Descriptor) Ordered() []string {
	var events []string
	for _, event := range knownEvents {
		if _, ok := d.Hooks[event]; ok {
			events = append(events, event)
		}
	}
	return events
}

func isKnownEvent(event string) bool {
	for _, known := range knownEvents {
		if event == known {
			return true
		}
	}
	return false
}
