// Package symbols builds the declaration table over parsed files and answers
// name-resolution queries: types, enum constructors, members along the super
// chain and local declarations visible from a syntax node.
//
// A Table is never mutated after Build, so queries may run concurrently.
package symbols
