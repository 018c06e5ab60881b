// Package container is a small identifier-keyed injection container.
//
// The component core only needs four capabilities from a container: bind an
// identifier to an implementation, construct instances, list every instance
// bound under one identifier, and answer whether an identifier is bound.
// Identifiers are arbitrary comparable values; in practice they are
// token.Token values, namespaced strings such as "core:hook-pipe", or
// reflect.Type values for self bindings.
//
// Several bindings may exist for the same identifier. Get requires exactly
// one; GetAll returns all of them in binding order, which is how extension
// points fan in.
package container
