/*
Package domain contains the core domain models of the Stepwise transition engine.

It describes machines (steps and named transitions), the short-lived transition event
handed to validators and callbacks, the persisted record a machine operates on, and the
error kinds the engine reports. This package is kept pure and free of I/O, following
Hexagonal Architecture principles.

# Key Entities

  - Config: The static description of a machine (property path, steps, transitions).
  - TransitionSpec: A named edge with its validators and pre/post callbacks.
  - Event: The snapshot of a transition in flight, passed to validators, callbacks and signal subscribers.
  - Object: The capability set the engine needs from the business object it drives.
  - Record: A serializable business object with attributes and an append-only history.
*/
package domain
