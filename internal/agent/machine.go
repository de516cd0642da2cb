// Package agent runs one conversation turn through the guardrail,
// retrieval and answer generation.
package agent

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/guardrail"
	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/internal/telemetry"
)

// Gate admits or rejects a query before retrieval
type Gate interface {
	Classify(query string) guardrail.Decision
}

// Retriever returns the chunks most relevant to a raw query
type Retriever interface {
	Search(ctx context.Context, raw string, limit int) ([]models.CodeChunk, error)
}

// Generator produces an answer from a system and a user prompt
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Machine processes turns. It holds no per-conversation state, so one
// Machine may serve concurrent conversations when its collaborators can.
type Machine struct {
	gate      Gate
	retriever Retriever
	generator Generator
	recorder  telemetry.Recorder
	fallback  string
	logger    *zap.Logger
}

// NewMachine wires the turn pipeline. fallback is the answer used when a
// turn has no user message to work from.
func NewMachine(gate Gate, retriever Retriever, generator Generator, recorder telemetry.Recorder, fallback string, logger *zap.Logger) *Machine {
	if recorder == nil {
		recorder = telemetry.NoopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		gate:      gate,
		retriever: retriever,
		generator: generator,
		recorder:  recorder,
		fallback:  fallback,
		logger:    logger,
	}
}

// Invoke runs Start → Guardrail → (Rejected | Retrieval) → Chat → Done and
// returns the new state with exactly one assistant message appended.
// Per-turn failures become the answer text and are reported in Err.
func (m *Machine) Invoke(ctx context.Context, in ConversationState) ConversationState {
	st := in
	st.Messages = append([]Message(nil), in.Messages...)
	st.Trace = []State{StateStart}
	st.Err = nil
	st.halted = false

	current := StateStart
	for current != StateDone {
		next := m.step(ctx, current, &st)
		if !canTransition(current, next) {
			panic(fmt.Sprintf("agent: illegal transition %s -> %s", current, next))
		}
		st.Trace = append(st.Trace, next)
		current = next
	}

	return st
}

func (m *Machine) step(ctx context.Context, current State, st *ConversationState) State {
	switch current {
	case StateStart:
		return StateGuardrail
	case StateGuardrail:
		return m.guard(st)
	case StateRejected:
		st.RetrievedContext = []models.CodeChunk{}
		return StateChat
	case StateRetrieval:
		m.retrieve(ctx, st)
		return StateChat
	case StateChat:
		m.chat(ctx, st)
		return StateDone
	case StateDone:
		return StateDone
	default:
		panic(fmt.Sprintf("agent: unknown state %d", int(current)))
	}
}

func (m *Machine) guard(st *ConversationState) State {
	query, ok := st.lastUserMessage()
	if !ok {
		m.halt(st, "")
		st.Err = fmt.Errorf("%w: no user message", models.ErrGuardrailRejected)
		return StateRejected
	}

	decision := m.gate.Classify(query)
	if !decision.Accepted {
		m.halt(st, decision.Reason)
		st.Err = models.ErrGuardrailRejected
		m.logger.Debug("query rejected", zap.String("query", query))
		return StateRejected
	}
	return StateRetrieval
}

func (m *Machine) retrieve(ctx context.Context, st *ConversationState) {
	query, _ := st.lastUserMessage()

	chunks, err := m.retriever.Search(ctx, query, 0)
	if err != nil {
		st.RetrievedContext = []models.CodeChunk{}
		m.halt(st, retrievalMessage(err))
		st.Err = err
		m.logger.Warn("retrieval failed", zap.Error(err))
		return
	}

	st.RetrievedContext = chunks
	st.GuardrailMessage = ""
}

// halt ends the turn with message as its answer, or the fallback when
// message is empty
func (m *Machine) halt(st *ConversationState, message string) {
	if message == "" {
		message = m.fallback
	}
	st.GuardrailMessage = message
	st.halted = true
}

func retrievalMessage(err error) string {
	if errors.Is(err, models.ErrEmptyQuery) {
		return models.EmptyQueryMessage
	}
	return err.Error()
}

func (m *Machine) chat(ctx context.Context, st *ConversationState) {
	query, hasQuery := st.lastUserMessage()

	var answer string
	switch {
	case st.halted:
		answer = st.GuardrailMessage
	case !hasQuery:
		answer = m.fallback
	default:
		text, err := m.generator.Generate(ctx, SystemPrompt, UserPrompt(query, st.RetrievedContext))
		if err != nil {
			if !errors.Is(err, models.ErrGenerationFailed) {
				err = fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
			}
			m.logger.Warn("generation failed", zap.Error(err))
			st.Err = err
			text = err.Error()
		}
		answer = text
	}

	turn := telemetry.Turn{
		Query:            query,
		Response:         answer,
		RetrievedContext: st.RetrievedContext,
	}
	if st.Err != nil {
		turn.Error = answer
	}
	m.recorder.RecordTurn(ctx, turn)

	st.Messages = append(st.Messages, Message{Role: RoleAssistant, Content: answer})
	st.GuardrailMessage = ""
	st.halted = false
}
