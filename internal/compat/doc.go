// Package compat decides whether a value of one type may be stored where
// another type is expected, and unifies branch types into one.
package compat
