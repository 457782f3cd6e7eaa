package tui

import "github.com/Veraticus/spice-assistant/internal/model"

// replyMsg carries the assistant's answer back into the update loop.
type replyMsg struct {
	reply model.Reply
}

// speaker identifies who said a transcript line.
type speaker int

const (
	speakerUser speaker = iota
	speakerAssistant
)

// entry is one line of the transcript.
type entry struct {
	text    string
	from    speaker
	isError bool
}
