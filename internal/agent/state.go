package agent

import (
	"fmt"

	"github.com/jamaly87/codebase-qa/internal/models"
)

// Role identifies the author of a conversation message
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Message is one turn of the conversation
type Message struct {
	Role    Role
	Content string
}

// ConversationState is carried between turns. RetrievedContext holds the
// chunks for the current turn only; GuardrailMessage is set while a turn
// is short-circuited and is always empty once Invoke returns.
type ConversationState struct {
	Messages         []Message
	RetrievedContext []models.CodeChunk
	GuardrailMessage string

	// Trace lists the states visited by the last Invoke
	Trace []State
	// Err is the failure behind the last answer, if any
	Err error

	// halted marks a turn whose answer is already decided
	halted bool
}

// WithUserMessage returns a copy of s with a user turn appended
func (s ConversationState) WithUserMessage(content string) ConversationState {
	messages := make([]Message, len(s.Messages), len(s.Messages)+1)
	copy(messages, s.Messages)
	s.Messages = append(messages, Message{Role: RoleUser, Content: content})
	return s
}

// LastAnswer returns the most recent assistant message, or ""
func (s ConversationState) LastAnswer() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Content
		}
	}
	return ""
}

func (s ConversationState) lastUserMessage() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}

// State is a step of the per-turn state machine
type State int

const (
	StateStart State = iota
	StateGuardrail
	StateRejected
	StateRetrieval
	StateChat
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateGuardrail:
		return "guardrail"
	case StateRejected:
		return "rejected"
	case StateRetrieval:
		return "retrieval"
	case StateChat:
		return "chat"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// transitions lists the legal successors of every state
var transitions = map[State][]State{
	StateStart:     {StateGuardrail},
	StateGuardrail: {StateRejected, StateRetrieval},
	StateRejected:  {StateChat},
	StateRetrieval: {StateChat},
	StateChat:      {StateDone},
	StateDone:      nil,
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
