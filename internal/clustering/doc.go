// Package clustering groups points of interest into map markers for a
// viewport and plans the marker animation between two clustering results.
//
// The engine uses greedy distance-threshold clustering on the Web Mercator
// plane. A zoom level is converted into a ground radius from the on-screen
// marker radius, points are visited in ID order and each point joins the first
// cluster whose center lies strictly within that radius. Merge passes then
// combine clusters whose centers drifted within the radius of each other.
//
// Greedy clustering is not permutation invariant: a different visiting order
// can produce a different partition. Sorting by ID makes results reproducible
// for a given input set; the order dependence itself is accepted behavior.
//
// Cluster centers are running member-weighted averages, so the final center
// of a cluster may differ from the exact centroid by floating-point rounding
// that depends on merge order.
package clustering
