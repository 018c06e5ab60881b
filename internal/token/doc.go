// Package token provides the opaque handle type used to key interface points.
//
// A Token is what components bind hooks and services against and what
// messages are addressed to. Tokens are comparable and can be used as map
// keys, but they carry no structural identity: two tokens created with the
// same label are still different tokens. The label exists only so logs and
// error messages stay readable.
package token
