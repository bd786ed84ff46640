/*
Package session serializes transitions on stored records.

A machine assumes at most one transition in flight per object. The Manager enforces
that for records kept in a ports.RecordStore: every operation on a record runs under a
per-record mutex and, when configured, a distributed lock shared across replicas.
*/
package session
