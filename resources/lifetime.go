package resources

// Lifetime collects release functions and runs them in the reverse order of
// registration. A resource is registered right after it was created, so
// everything created after it, and depending on it, is released first. If
// initialization fails halfway, releasing the Lifetime frees exactly what was
// created so far.
type Lifetime struct {

	// OnRelease, when set, is called with the name of each resource just before
	// it is released.
	OnRelease func(name string)

	releases []namedRelease
}

type namedRelease struct {
	name string
	fn   func()
}

// Defer registers fn as the release function of the resource called name.
func (l *Lifetime) Defer(name string, fn func()) {
	l.releases = append(l.releases, namedRelease{name: name, fn: fn})
}

// Release runs all registered functions, last registered first, and forgets
// them. Calling it again does nothing until new resources are registered.
func (l *Lifetime) Release() {
	for i := len(l.releases) - 1; i >= 0; i-- {
		r := l.releases[i]
		if l.OnRelease != nil {
			l.OnRelease(r.name)
		}
		r.fn()
	}
	l.releases = nil
}

// Len returns the number of resources waiting to be released.
func (l *Lifetime) Len() int {
	return len(l.releases)
}

// Names returns the registered resource names in registration order.
func (l *Lifetime) Names() []string {
	names := make([]string, len(l.releases))
	for i, r := range l.releases {
		names[i] = r.name
	}
	return names
}
