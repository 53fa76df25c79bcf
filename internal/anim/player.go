package anim

// Event drives a Player.
type Event int

const (
	// Tick advances playback by one frame unless paused.
	Tick Event = iota
	// Click toggles pause when click-to-pause is enabled.
	Click
	// TogglePause always toggles pause.
	TogglePause
)

func (e Event) String() string {
	switch e {
	case Tick:
		return "tick"
	case Click:
		return "click"
	case TogglePause:
		return "toggle-pause"
	}
	return "unknown"
}

// Player walks a frame sequence, looping at the end.
type Player struct {
	frames       []int
	pos          int
	Paused       bool
	ClickToPause bool
}

func NewPlayer(frames []int, clickToPause bool) *Player {
	return &Player{frames: frames, ClickToPause: clickToPause}
}

// Frame is the frame number at the current position.
func (p *Player) Frame() int {
	if len(p.frames) == 0 {
		return 0
	}
	return p.frames[p.pos]
}

func (p *Player) Position() int { return p.pos }
func (p *Player) Len() int      { return len(p.frames) }

// Handle applies ev and reports whether the displayed frame changed.
func (p *Player) Handle(ev Event) bool {
	switch ev {
	case Tick:
		if p.Paused || len(p.frames) == 0 {
			return false
		}
		prev := p.Frame()
		p.pos = (p.pos + 1) % len(p.frames)
		return p.Frame() != prev
	case Click:
		if p.ClickToPause {
			p.Paused = !p.Paused
		}
	case TogglePause:
		p.Paused = !p.Paused
	}
	return false
}

// Seek moves to the first position showing frame num at or after it.
func (p *Player) Seek(num int) {
	if len(p.frames) == 0 {
		return
	}
	for i, f := range p.frames {
		if f >= num {
			p.pos = i
			return
		}
	}
	p.pos = len(p.frames) - 1
}
