// Package styles resolves the stylesheets embedded in HTML documents and in
// pages printed by the chrome compiler.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader  - built-in stylesheets compiled into the binary
//	    ├── DirLoader       - {dir}/{name}.css from a user directory
//	    └── Resolver        - both, user directory first
//
// A reference given to Resolver.Resolve is either a file path (it contains a
// path separator or ends in .css) or a stylesheet name. Names are looked up
// in the user directory first and fall back to the built-ins, so a user can
// override "default" without losing "report".
//
// # Security
//
// Names are validated before use. DirLoader resolves symlinks and refuses
// files outside its directory.
package styles
