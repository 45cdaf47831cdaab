// Package ports defines the driven-side interfaces of the shaperig core.
//
// The rig graph never talks to a host application (Maya, XSI, a test
// harness...) directly. Everything it needs from the outside world is
// expressed here, so adapters can be swapped without touching the domain.
package ports
