// Package repository defines the persistent store contract consumed by the
// collection layer. Two implementations exist: sqlite (embedded, the
// default) and postgres. The store is authoritative and durable; the
// collections are a read-mostly cache over it.
package repository
