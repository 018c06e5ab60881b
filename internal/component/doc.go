// Package component defines the Component entity: a named unit owning a fixed
// table of interface tokens and a mutable configuration bag.
//
// Components are created by the registry from descriptors. The name and the
// interface table never change after construction; the configuration may be
// updated at any time through Configure, which merges by shallow overwrite.
package component
