package services

import (
	"time"

	"smart-price/models"
)

// State is the position of a Session in its request cycle.
type State int

const (
	StateIdle State = iota
	StateEncoding
	StatePredicted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEncoding:
		return "encoding"
	case StatePredicted:
		return "predicted"
	default:
		return "unknown"
	}
}

// Session tracks one interactive user through Idle → Encoding → Predicted →
// Idle. Nothing happens until Predict is called. A Session belongs to a
// single caller; share the Predictor, not the Session.
type Session struct {
	predictor *Predictor
	state     State
	result    *models.Prediction
	history   []State
}

// NewSession starts an idle session on p.
func NewSession(p *Predictor) *Session {
	return &Session{predictor: p, state: StateIdle, history: []State{StateIdle}}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// History returns every state the session has entered, oldest first.
func (s *Session) History() []State {
	out := make([]State, len(s.history))
	copy(out, s.history)
	return out
}

// Predict runs one request. A pending result that was never collected is
// discarded first. On error the session returns to Idle without invoking
// the model.
func (s *Session) Predict(req *models.PredictionRequest) (*models.Prediction, error) {
	if s.state == StatePredicted {
		s.result = nil
		s.enter(StateIdle)
	}

	start := time.Now()
	s.enter(StateEncoding)
	v, err := s.predictor.Encode(req)
	if err != nil {
		s.predictor.metrics.PredictionFailed(err)
		s.enter(StateIdle)
		return nil, err
	}

	s.result = s.predictor.Evaluate(v)
	s.predictor.metrics.PredictionServed(s.result.Floored, time.Since(start))
	s.enter(StatePredicted)
	return s.result, nil
}

// Collect hands over the pending result and returns the session to Idle.
// It returns nil when there is no result.
func (s *Session) Collect() *models.Prediction {
	if s.state != StatePredicted {
		return nil
	}
	out := s.result
	s.result = nil
	s.enter(StateIdle)
	return out
}

func (s *Session) enter(next State) {
	s.state = next
	s.history = append(s.history, next)
}
