// Package filter classifies resources into packages using ordered split
// rules.
//
// A [Rule] pairs a [Matcher] with an optional package name. The [Classifier]
// walks its rules in configured order and the first matching rule decides the
// outcome: the resource is assigned to the rule's package or, when the rule
// names no package, dropped. Resources no rule matches go to the default
// package.
package filter
