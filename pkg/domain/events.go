package domain

// Observer receives structural change notifications from a Simplex. UI
// layers and query caches subscribe instead of the core model knowing
// about them.
type Observer interface {
	OnInserted(item any)
	OnRemoved(item any)
	OnChanged(item any)
}

// ObserverFuncs adapts plain functions to the Observer interface. Nil
// fields are ignored.
type ObserverFuncs struct {
	Inserted func(item any)
	Removed  func(item any)
	Changed  func(item any)
}

func (f ObserverFuncs) OnInserted(item any) {
	if f.Inserted != nil {
		f.Inserted(item)
	}
}

func (f ObserverFuncs) OnRemoved(item any) {
	if f.Removed != nil {
		f.Removed(item)
	}
}

func (f ObserverFuncs) OnChanged(item any) {
	if f.Changed != nil {
		f.Changed(item)
	}
}

// AddObserver subscribes o to structural change events.
func (s *Simplex) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// RemoveObserver drops a previously added observer.
func (s *Simplex) RemoveObserver(o Observer) {
	for i, cur := range s.observers {
		if cur == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

func (s *Simplex) notifyInserted(item any) {
	for _, o := range s.observers {
		o.OnInserted(item)
	}
}

func (s *Simplex) notifyRemoved(item any) {
	for _, o := range s.observers {
		o.OnRemoved(item)
	}
}

func (s *Simplex) notifyChanged(item any) {
	for _, o := range s.observers {
		o.OnChanged(item)
	}
}
