// Package generics holds the generic resolver: an ordered environment of
// type-parameter bindings, each tagged with the reason it exists, plus a
// separate list of constraints consulted only when no binding is known.
//
// A nil *Resolver is a valid empty resolver.
package generics
