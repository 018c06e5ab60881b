// Package config defines the format-agnostic configuration model: the
// application settings and one attribute map per component. Concrete
// loaders, such as the HCL one, live in separate packages and implement
// the Loader interface.
package config
