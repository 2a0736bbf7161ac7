// Package multibody implements the kinematic core of an articulated rigid
// body tree:
//
//   - [System]: an arena of body nodes connected by mobilizers, frozen at
//     topology realization
//   - [State]: the run-time container for q, u, udot, instance variables,
//     and the per-stage caches
//   - [Mobilizer]: the joint contract mapping a body's own q/u slice to
//     the cross-mobilizer transform and its derivatives
//   - [Body]: responses (cached quantities), operators (between-body
//     queries), and force accumulation utilities
//
// # Realization
//
// System.Realize advances a State stage by stage (see package stage); each
// kinematic stage is one forward sweep over the tree in parent-before-child
// order, touching every node exactly once. Reads below the realized stage
// fail with a [StageError]; mutating q, u, udot, or an instance variable
// truncates the stage marker so stale cache contents become unreachable.
//
// # Thread safety
//
// A System is immutable after RealizeTopology and may be shared. A State
// is single-writer: realize and mutate it from one goroutine only. Use
// State.Clone for concurrent work over the same system.
package multibody
