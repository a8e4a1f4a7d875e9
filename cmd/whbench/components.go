package main

// Position and Velocity are every entity's base component set; Health is
// layered onto a fraction of entities so spawn/query/churn exercise more
// than one archetype.
type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }
type Health struct{ HP int }
