// Package msg defines the message types used by the TUI's Bubbletea event loop.
//
// Everything that changes the build view reaches the model as a message:
// timer ticks, process callbacks posted by the controller, file changes from
// the watcher and configuration reloads. The model handles them one at a
// time, which is what keeps the build view single-threaded.
package msg
