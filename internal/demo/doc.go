// Package demo is a small application built with the reducer algebra.
//
// It combines four features into one root reducer:
//
//   - counter: synchronous updates, a delayed increment that can be
//     cancelled, an asynchronous fact lookup and a fire-and-forget log line
//   - todos: a list edited through ForEachIndexed
//   - editor: an optional draft editor lifted with Optional
//   - timers: named countdown timers held in a map and edited through
//     ForEachKeyed, each ticking on the environment's scheduler
//
// The package backs the CLI's run command and the scenario harness, and is
// the reference for how features are pulled back into one application.
package demo
