package bundle

import _ "embed"

// runtimePreamble is the Lua module registry every bundle starts with.
// It is prepended verbatim; the wrapper and epilogue depend only on its
// functions/get_require names and the files/modules state shape.
//
//go:embed runtime.lua
var runtimePreamble string
