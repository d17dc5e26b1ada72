// Package screens implements screen lifecycle management.
package screens

// Screen represents one screen of the client (loading, mission
// preview, hangar, etc.)
type Screen interface {
	// Enter is called when entering this screen.
	Enter() error

	// Exit is called when leaving this screen.
	Exit() error

	// Update is called every frame.
	Update(dt float64) error

	// Render is called every frame to draw the screen.
	Render() error

	// HandleInput processes input events.
	HandleInput(event interface{}) error
}

// Manager manages screen transitions.
type Manager struct {
	current Screen
	next    Screen
}

// NewManager creates a new screen manager.
func NewManager() *Manager {
	return &Manager{}
}

// Current returns the current screen.
func (m *Manager) Current() Screen {
	return m.current
}

// Change schedules a screen change. The transition happens at the top
// of the next Update, never in the middle of a frame.
func (m *Manager) Change(next Screen) {
	m.next = next
}

// Update processes screen changes and updates the current screen.
func (m *Manager) Update(dt float64) error {
	if m.next != nil {
		if m.current != nil {
			if err := m.current.Exit(); err != nil {
				return err
			}
		}
		m.current = m.next
		m.next = nil
		if err := m.current.Enter(); err != nil {
			return err
		}
	}

	if m.current != nil {
		return m.current.Update(dt)
	}
	return nil
}

// Render renders the current screen.
func (m *Manager) Render() error {
	if m.current != nil {
		return m.current.Render()
	}
	return nil
}

// HandleInput forwards an input event to the current screen.
func (m *Manager) HandleInput(event interface{}) error {
	if m.current != nil {
		return m.current.HandleInput(event)
	}
	return nil
}
