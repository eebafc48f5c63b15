// Package eval computes the type of any expression or statement node.
//
// An Evaluator is shared; every Evaluate, CheckMember or CheckFile call runs
// one query with its own recursion guards, expectation map and scope. Only
// the node walk a caller asked for reports diagnostics: lookups of other
// declarations (a local's initializer, a field's inferred type) always run
// silently, so a finding is reported exactly once.
package eval
