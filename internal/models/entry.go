package models

import "time"

// NoteEntry is one ordered fragment of a note: text, audio, or both.
// AudioKey is the object-storage key the audio was uploaded under;
// AudioURL is the last resolved playback URL. EntryOrder uniqueness is
// not enforced; listings break ties by insertion order.
type NoteEntry struct {
	ID         string
	NoteID     string
	Content    string
	AudioURL   string
	AudioKey   string
	EntryOrder int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
