// Package candidate holds the applications that can service one request and
// the resolver that collects them.
package candidate

// App is one installed application able to service the current request.
// AppID is the launch key.
type App struct {
	PackageName string
	DisplayName string
	AppID       string
	ExecPath    string
	IconPath    string
}

// Label returns the display name, falling back to the app id.
func (a *App) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.AppID
}

// Store is the ordered set of candidates for one resolution pass. Insertion
// order is discovery order. Entries are only ever released all at once.
type Store struct {
	apps []*App
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds a candidate at the end.
func (s *Store) Append(app App) {
	s.apps = append(s.apps, &app)
}

// Clear releases every entry. Safe on an empty store.
func (s *Store) Clear() {
	if s == nil {
		return
	}
	for i := range s.apps {
		s.apps[i] = nil
	}
	s.apps = nil
}

// Len returns the number of candidates.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.apps)
}

// At returns the candidate at index i, or nil when out of range.
func (s *Store) At(i int) *App {
	if s == nil || i < 0 || i >= len(s.apps) {
		return nil
	}
	return s.apps[i]
}

// Each visits candidates in order until fn returns false.
func (s *Store) Each(fn func(i int, app *App) bool) {
	if s == nil {
		return
	}
	for i, app := range s.apps {
		if !fn(i, app) {
			return
		}
	}
}

// IDs returns the app ids in order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, s.Len())
	s.Each(func(_ int, app *App) bool {
		ids = append(ids, app.AppID)
		return true
	})
	return ids
}
