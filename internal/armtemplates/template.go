// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package armtemplates provides a lightweight model of Azure Resource
// Manager deployment templates. Only the subset of the template schema
// used by this project is represented.
package armtemplates

import (
	"encoding/json"

	"github.com/juju/errors"
)

const (
	schema         = "http://schema.management.azure.com/schemas/2015-01-01/deploymentTemplate.json#"
	contentVersion = "1.0.0.0"
)

// Template describes an ARM deployment template.
type Template struct {
	// Resources holds the resources to be deployed.
	Resources []Resource `json:"resources"`

	// Outputs holds the template's named output values.
	Outputs map[string]Output `json:"outputs,omitempty"`
}

// MarshalJSON implements json.Marshaler, supplying the fixed schema
// and content version attributes.
func (t *Template) MarshalJSON() ([]byte, error) {
	type templateJSON struct {
		Schema         string            `json:"$schema"`
		ContentVersion string            `json:"contentVersion"`
		Resources      []Resource        `json:"resources"`
		Outputs        map[string]Output `json:"outputs,omitempty"`
	}
	return json.Marshal(templateJSON{
		Schema:         schema,
		ContentVersion: contentVersion,
		Resources:      t.Resources,
		Outputs:        t.Outputs,
	})
}

// Map returns the template as a generic map, the form required by
// the deployments API.
func (t *Template) Map() (map[string]interface{}, error) {
	data, err := t.MarshalJSON()
	if err != nil {
		return nil, errors.Trace(err)
	}
	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Trace(err)
	}
	return result, nil
}

// Resource describes a resource in an ARM deployment template.
type Resource struct {
	APIVersion string            `json:"apiVersion"`
	Type       string            `json:"type"`
	Name       string            `json:"name"`
	Location   string            `json:"location,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
	Comments   string            `json:"comments,omitempty"`
	DependsOn  []string          `json:"dependsOn,omitempty"`
	Properties interface{}       `json:"properties,omitempty"`
	Resources  []Resource        `json:"resources,omitempty"`

	// Sku is the resource's SKU, where applicable.
	Sku *Sku `json:"sku,omitempty"`
}

// Sku identifies a resource SKU.
type Sku struct {
	Name string `json:"name,omitempty"`
	Tier string `json:"tier,omitempty"`
}

// Output describes a template output value.
type Output struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
