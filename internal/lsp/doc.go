// Package lsp serves the type engine over the Language Server Protocol on
// stdio: diagnostics are published after a debounce, hover shows the type
// of the innermost expression and inlay hints show inferred types of
// untagged variables and fields.
//
// Documents are kept in memory as the client edits them; every analysis
// builds one program from the open buffers plus the project sources on
// disk.
package lsp
