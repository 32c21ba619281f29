package simulation

// feed is the episode-local shared timeline agents post and reply into.
// It exists only for the lifetime of one episode; distinct groups never
// share one (spec.md §4.5's feed lifecycle).
type feed struct {
	entries []feedEntry
}

type feedEntry struct {
	Author  string
	Content string
}

func newFeed() *feed {
	return &feed{}
}

func (f *feed) append(author, content string) {
	f.entries = append(f.entries, feedEntry{Author: author, Content: content})
}

// eligibleFor returns the indices of entries not authored by name.
func (f *feed) eligibleFor(name string) []int {
	var out []int
	for i, e := range f.entries {
		if e.Author != name {
			out = append(out, i)
		}
	}
	return out
}

func (f *feed) at(i int) feedEntry {
	return f.entries[i]
}
