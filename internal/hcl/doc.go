// Package hcl loads componentry configuration from HCL files into the
// format-agnostic config.Model and watches those files for changes.
package hcl
