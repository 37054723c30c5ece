// Package component defines the component descriptor tree consumed by the
// toolpath pipeline. A descriptor is an immutable tree of parametric
// primitives (box, sphere, cylinder, cone, torus, hemisphere, capsule) and
// composite groups, positioned in world space.
package component
