// Package analysis provides the level and CPU meters attached to effect
// chain entries. Meters are updated by the audio goroutine and read from any
// other goroutine without locks.
package analysis
