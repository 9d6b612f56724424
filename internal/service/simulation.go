package service

import (
	"context"
	"fmt"
	"time"

	"netsketch/internal/logging"
	"netsketch/internal/simulation"
)

// SimulationView is the simulation state sent to clients
type SimulationView struct {
	Clock    simulation.ClockState `json:"clock"`
	Messages []simulation.Message  `json:"messages"`
}

// SendMessageRequest queues a message animation between two devices
type SendMessageRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Simulation returns the clock and the messages in flight
func (s *EditorService) Simulation() SimulationView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simulationView()
}

// StartSimulation starts or resumes playback
func (s *EditorService) StartSimulation() SimulationView {
	return s.simulationControl("start", func() { s.clock.Start() })
}

// PauseSimulation pauses playback
func (s *EditorService) PauseSimulation() SimulationView {
	return s.simulationControl("pause", func() { s.clock.Pause() })
}

// StopSimulation halts playback, rewinds the clock and drops every message
func (s *EditorService) StopSimulation() SimulationView {
	return s.simulationControl("stop", func() {
		s.clock.Stop()
		s.messages.Clear()
	})
}

// StepSimulation advances the simulation by one interval, playing or not
func (s *EditorService) StepSimulation() SimulationView {
	return s.simulationControl("step", func() {
		s.clock.Step()
		s.deliver(s.messages.Update(simulation.StepInterval, s.clock.Speed()))
	})
}

// SetSpeed changes the playback multiplier and returns the applied value
func (s *EditorService) SetSpeed(speed float64) SimulationView {
	return s.simulationControl("speed", func() { s.clock.SetSpeed(speed) })
}

func (s *EditorService) simulationControl(op string, fn func()) SimulationView {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn()
	view := s.simulationView()
	s.bus.Publish(Event{Type: EventSimulationChanged, Payload: view.Clock})
	logging.WithOperation("simulation").Debugf("%s at %dms, speed %.1f", op, view.Clock.TimeMs, view.Clock.Speed)

	return view
}

// SendMessage queues a message from one device to another
func (s *EditorService) SendMessage(req SendMessageRequest) (simulation.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []string{req.From, req.To} {
		if _, ok := s.store.Device(id); !ok {
			return simulation.Message{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
		}
	}
	if req.Type == "" {
		req.Type = "data"
	}

	id := s.messages.Send(req.From, req.To, req.Type, req.Data)
	var msg simulation.Message
	for _, m := range s.messages.InFlight() {
		if m.ID == id {
			msg = m
			break
		}
	}

	s.bus.Publish(Event{Type: EventMessageSent, Payload: msg})
	s.refreshGauges()

	return msg, nil
}

// Tick advances a playing simulation by delta of wall time. It does nothing
// while paused or stopped.
func (s *EditorService) Tick(delta time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.clock.Playing() {
		return
	}
	speed := s.clock.Speed()
	s.clock.Advance(time.Duration(float64(delta) * speed))
	s.deliver(s.messages.Update(delta, speed))
}

// RunSimulation calls Tick every interval until ctx is done
func (s *EditorService) RunSimulation(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = simulation.StepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.WithOperation("simulation").WithField("tick", interval).Debug("simulation ticker started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(interval)
		}
	}
}

// deliver reports messages that reached their target. Messages whose target
// was removed in flight are dropped silently. Callers hold s.mu.
func (s *EditorService) deliver(delivered []simulation.Message) {
	for _, msg := range delivered {
		device, ok := s.store.Device(msg.To)
		if !ok {
			continue
		}
		logging.WithDevice(device.ID).WithField("message", msg.ID).
			Infof("%s message delivered to %s", msg.Type, device.Name)
		s.bus.Publish(Event{Type: EventMessageDelivered, Payload: msg})
	}
	if len(delivered) > 0 {
		s.refreshGauges()
	}
}

func (s *EditorService) simulationView() SimulationView {
	return SimulationView{
		Clock:    s.clock.State(),
		Messages: s.messages.InFlight(),
	}
}
