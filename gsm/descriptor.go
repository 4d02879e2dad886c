package gsm

// Descriptor bundles callbacks that run alongside whichever leaf state is
// active. Its hooks always run before the state's.
type Descriptor struct {
	Name string

	OnEnter       func()
	OnExit        func()
	OnUpdate      func()
	OnLateUpdate  func()
	OnFixedUpdate func()

	// Restart re-enters the leaf state when this descriptor is swapped in,
	// even if the leaf state itself does not change. Only the incoming
	// descriptor's flag counts.
	Restart bool
}

func (d *Descriptor) resume() bool {
	return d == nil || !d.Restart
}

func (d *Descriptor) enter() {
	if d != nil && d.OnEnter != nil {
		d.OnEnter()
	}
}

func (d *Descriptor) exit() {
	if d != nil && d.OnExit != nil {
		d.OnExit()
	}
}

func (d *Descriptor) update() {
	if d != nil && d.OnUpdate != nil {
		d.OnUpdate()
	}
}

func (d *Descriptor) lateUpdate() {
	if d != nil && d.OnLateUpdate != nil {
		d.OnLateUpdate()
	}
}

func (d *Descriptor) fixedUpdate() {
	if d != nil && d.OnFixedUpdate != nil {
		d.OnFixedUpdate()
	}
}
