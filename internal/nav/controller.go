// Package nav holds the navigation state machine driving which family view
// is requested and rendered. It is pure state: fetching and rendering stay
// with the caller, so the whole machine is testable without a display.
package nav

// State is the explicit navigation state: the family currently shown and
// the visited-family history. Pushing an id already present neither
// duplicates nor reorders it; the first-seen position is kept. History is
// never persisted.
type State struct {
	CurrentID int64
	History   []int64
}

func (s State) contains(id int64) bool {
	for _, h := range s.History {
		if h == id {
			return true
		}
	}
	return false
}

// Controller sequences navigation events. Every navigation returns a
// request token; a response carrying a superseded token is discarded in
// Complete, so a slow earlier fetch can never overwrite a later one.
type Controller struct {
	state     State
	defaultID int64
	nextToken uint64
	latest    uint64
}

// NewController creates a controller whose retry affordance targets
// defaultID (the known-good family to fall back on after errors).
func NewController(defaultID int64) *Controller {
	return &Controller{defaultID: defaultID}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) DefaultID() int64 { return c.defaultID }

// Open starts a navigation to familyID and returns the request token for
// the fetch. State is not touched until Complete reports success.
func (c *Controller) Open(familyID int64) uint64 {
	c.nextToken++
	c.latest = c.nextToken
	return c.latest
}

// Back pops the current tail and starts a re-fetch of the new tail (prior
// views are never cached). No-op when the history holds at most one entry.
func (c *Controller) Back() (token uint64, familyID int64, ok bool) {
	if len(c.state.History) <= 1 {
		return 0, 0, false
	}
	c.state.History = c.state.History[:len(c.state.History)-1]
	familyID = c.state.History[len(c.state.History)-1]
	return c.Open(familyID), familyID, true
}

// Refresh re-opens the current family without touching history.
func (c *Controller) Refresh() (token uint64, familyID int64, ok bool) {
	if c.state.CurrentID == 0 {
		return 0, 0, false
	}
	return c.Open(c.state.CurrentID), c.state.CurrentID, true
}

// Complete reports the outcome of the fetch started under token. It returns
// false when the token was superseded by a later navigation, in which case
// the response must be dropped. On success the family is pushed onto the
// history (dedup) and made current; on failure state is left unchanged and
// the caller shows the error view.
func (c *Controller) Complete(token uint64, familyID int64, err error) bool {
	if token != c.latest {
		return false
	}
	if err != nil {
		return true
	}
	if !c.state.contains(familyID) {
		c.state.History = append(c.state.History, familyID)
	}
	c.state.CurrentID = familyID
	return true
}

// CanGoBack reports whether Back would do anything.
func (c *Controller) CanGoBack() bool {
	return len(c.state.History) > 1
}
