// Package registry provides the central "glue" for the component system.
//
// The Registry is the catalog of components. Modules hand it a Descriptor;
// the registry turns it into a component.Component and keeps the
// descriptor's binding table, a map from scope name to setup callback.
//
// Binding happens per scope. ExecuteBinding runs one component's callback
// for one scope and Autobind runs a scope for every registered component in
// registration order. Components that do not declare a scope are skipped
// silently. Setup callbacks receive a Binder, a per-component façade over
// the injection container that keeps service identifiers namespaced, plus
// the registry itself as a read-only LookupService.
//
// The registry is owned by the application; there is no package-level
// instance.
package registry
