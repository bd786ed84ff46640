/*
Package signal delivers the engine's lifecycle signals to in-process subscribers.

Subscriptions are an explicit table handed to the bus at construction: there is no
process-wide listener map. Delivery is synchronous and in subscription order; a failing
subscriber is logged and never aborts the transition that emitted the signal.
*/
package signal
