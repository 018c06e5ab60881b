// Package bus provides the in-process message bus.
//
// Handlers subscribe to an interface token; emitting a message addressed to
// that token calls every matching handler synchronously, in subscription
// order. A failing handler (error or panic) never stops the remaining
// handlers of the same emit; failures are collected and returned together.
//
// Layered buses give each component scope its own bus whose messages are
// also forwarded to one shared root bus. Local handlers always run before
// the root dispatch, and anyone subscribing on the root observes messages
// from every scope.
package bus
