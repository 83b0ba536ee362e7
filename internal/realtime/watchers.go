package realtime

// watchIndex keeps host->watchers and watcher->hosts in step: an edge exists in one
// direction iff it exists in the other. Empty sets are deleted. Not safe for concurrent
// use; the Hub lock guards it.
type watchIndex struct {
	byHost    map[string]map[string]struct{}
	byWatcher map[string]map[string]struct{}
}

func newWatchIndex() *watchIndex {
	return &watchIndex{
		byHost:    make(map[string]map[string]struct{}),
		byWatcher: make(map[string]map[string]struct{}),
	}
}

func (w *watchIndex) add(watcherID, hostID string) {
	link(w.byHost, hostID, watcherID)
	link(w.byWatcher, watcherID, hostID)
}

// remove drops one edge and reports whether it existed.
func (w *watchIndex) remove(watcherID, hostID string) bool {
	if _, ok := w.byHost[hostID][watcherID]; !ok {
		return false
	}
	unlink(w.byHost, hostID, watcherID)
	unlink(w.byWatcher, watcherID, hostID)
	return true
}

// dropWatcher removes every edge of a watcher and returns the hosts it was watching.
func (w *watchIndex) dropWatcher(watcherID string) []string {
	hosts := keys(w.byWatcher[watcherID])
	for _, h := range hosts {
		unlink(w.byHost, h, watcherID)
	}
	delete(w.byWatcher, watcherID)
	return hosts
}

// dropHost removes every edge of a host and returns its former watchers.
func (w *watchIndex) dropHost(hostID string) []string {
	watchers := keys(w.byHost[hostID])
	for _, id := range watchers {
		unlink(w.byWatcher, id, hostID)
	}
	delete(w.byHost, hostID)
	return watchers
}

func (w *watchIndex) count(hostID string) int {
	return len(w.byHost[hostID])
}

func (w *watchIndex) watchersOf(hostID string) []string {
	return keys(w.byHost[hostID])
}

func (w *watchIndex) hostsOf(watcherID string) []string {
	return keys(w.byWatcher[watcherID])
}

func link(m map[string]map[string]struct{}, from, to string) {
	set := m[from]
	if set == nil {
		set = make(map[string]struct{})
		m[from] = set
	}
	set[to] = struct{}{}
}

func unlink(m map[string]map[string]struct{}, from, to string) {
	set, ok := m[from]
	if !ok {
		return
	}
	delete(set, to)
	if len(set) == 0 {
		delete(m, from)
	}
}

func keys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
