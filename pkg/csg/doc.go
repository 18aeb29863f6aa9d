// Package csg resolves overlapping convex brushes into classified surface
// fragments.
//
// A brush is the intersection of the half-spaces behind its planes. The Tree
// owns every brush, tracks which brushes need their derived geometry rebuilt,
// and on Rebuild clips each brush face against every brush it overlaps. The
// resulting fragments record which volume lies in front of and behind them;
// a fragment whose two volumes differ is a visible surface.
//
// Corners are identified by the three faces that generate them rather than
// by position, so edges and split points are derived symbolically and never
// depend on tolerance-based vertex welding.
//
// The package is single-threaded: callers mutate brushes, call Rebuild once,
// then read fragments.
package csg
