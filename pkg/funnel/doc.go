// Package funnel implements the funnel-chart geometry engine.
//
// Given a set of labeled numeric values, the package computes the trapezoidal
// sections of a funnel whose areas are proportional to the values, lays out
// the corner vertices of each section for rendering, and resolves pointer
// coordinates back to the section under the cursor.
//
// # Pipeline
//
// Data flows one direction:
//
//	raw (label, value) pairs → Series (sorted, normalized weights)
//	→ Solve (iteratively solved bases, lengths, vertices)
//	→ rendering (external) and HitTest
//
// # Geometry lifecycle
//
// Geometry is recomputed in full on every Solve call; there is no incremental
// update. Because it depends on the current frame dimensions, callers must
// re-solve whenever the drawing surface resizes, before running any hit test
// against it. A single logical owner mutates geometry; HitTest only reads it,
// so no locking is required.
//
// # Interaction
//
// InteractionController owns transient highlight state and translates pointer
// events into highlight transitions plus the host events to raise (mouse-over,
// highlight-start, highlight-end, click, right-click). Section indices always
// refer to the sorted order, not the caller's input order.
package funnel
