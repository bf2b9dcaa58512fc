// Package divergence computes how local branches relate to the repository
// mainline: ahead/behind counts, fork points, freshness status, and the
// repository description used by the command surface.
package divergence
