// Package session keeps classification sessions between turns. It provides
// memory and Redis stores and a Manager that runs one turn at a time per
// session against the classification machine.
package session
