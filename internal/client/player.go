// Package client implements the participant-side reconciler: it merges
// authoritative party broadcasts with locally-applied optimistic changes and
// keeps an opaque player within drift bounds of the session position.
package client

// Player is the opaque playback surface a client controls. The real decode
// and render pipeline lives behind it; the reconciler only needs position and
// play state signals plus seek/play/pause commands.
type Player interface {
	Position() float64 // seconds into content
	IsPlaying() bool
	SeekTo(position float64)
	Play()
	Pause()
}
