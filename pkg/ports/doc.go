/*
Package ports defines the driven ports (interfaces) for the Stepwise engine.

These interfaces decouple the transition engine from pluggable behavior and from
external implementations, allowing it to work with various storage backends,
signal transports and user-supplied validators or callbacks.

# Key Interfaces

  - Validator: Checks an object's attributes against a transition's rules.
  - Callback: A side effect run before or after the state mutation.
  - Publisher: Emits the engine's lifecycle signals.
  - RecordStore: Responsible for persisting and loading Records.
  - DistributedLocker: Provides distributed locking for concurrent record access.
*/
package ports
