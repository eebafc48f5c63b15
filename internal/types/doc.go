// Package types is the type model: immutable values for every type shape
// (unknown, dynamic, void, primitives, class instances, functions, enum
// values, type parameters) and the result Holder that carries them through
// evaluation.
//
// Values are never mutated in place; With* methods return copies. Model ties
// the values to a symbols.Table for operations that need declarations:
// converting type tags, typedef following and core instances such as
// Array<T> or Null<T>.
package types
