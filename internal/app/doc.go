// Package app contains the application wiring. App owns the logger, the
// component registry, the injection container and, through the core
// component, the root message bus. It is decoupled from any specific
// entrypoint like a CLI.
package app
