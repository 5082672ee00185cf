// Package orm is a small entity-to-table mapping engine. Tables are declared
// as ordered field descriptors carrying type and constraint tags; the engine
// synthesizes the schema statement, parameterized insert/upsert statements
// (applying the salt-then-hash credential protocol on the way), and filtered
// reads whose columns are coerced back to their declared field types.
//
// No reflection is involved: descriptors are plain static data, and records
// are name-to-value maps checked against their descriptor at every operation.
package orm
