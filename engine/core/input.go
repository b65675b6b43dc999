package core

// Input tracks key state and the cursor from window events.
type Input struct {
	keys           map[Key]bool
	pressed        map[Key]bool
	mods           Mod
	mouseX, mouseY float64
	scrollY        float64
}

func NewInput() *Input { return &Input{keys: map[Key]bool{}, pressed: map[Key]bool{}} }

func (in *Input) Handle(ev Event) {
	switch e := ev.(type) {
	case EventKey:
		if e.Down && !in.keys[e.Key] {
			in.pressed[e.Key] = true
		}
		in.keys[e.Key] = e.Down
		in.mods = e.Mods
	case EventMouseMove:
		in.mouseX, in.mouseY = e.X, e.Y
	case EventScroll:
		in.scrollY += e.Yoff
	}
}

// SetMouse seeds the cursor before the first move event arrives.
func (in *Input) SetMouse(x, y float64) { in.mouseX, in.mouseY = x, y }

func (in *Input) IsKeyDown(k Key) bool { return in.keys[k] }

// WasPressed reports a down transition of k since the last EndTick.
func (in *Input) WasPressed(k Key) bool { return in.pressed[k] }

func (in *Input) Mods() Mod                 { return in.mods }
func (in *Input) Mouse() (float64, float64) { return in.mouseX, in.mouseY }
func (in *Input) Scroll() float64           { return in.scrollY }

// EndTick clears edge state after a fixed update.
func (in *Input) EndTick() {
	clear(in.pressed)
	in.scrollY = 0
}
