// Package audit provides the asynchronous audit-event pipeline for authcore
// security flows: issued codes, verification outcomes, throttle hits.
//
// Events flow through a bounded [Dispatcher] so slow sinks cannot add
// latency to request handling. When the buffer is full the dispatcher either
// drops (counting drops) or applies backpressure, per configuration.
//
// # What this package must NOT do
//
//   - Carry plaintext codes or passwords in event metadata.
//   - Import authcore or any sibling internal package.
package audit
