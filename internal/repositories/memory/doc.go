// Package memory implements the repository interfaces in process memory.
// It backs STORAGE=memory and the test suites; uniqueness and add-to-set
// semantics match the Postgres and Mongo implementations.
package memory
