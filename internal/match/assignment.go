package match

import "sort"

// Assignment maps a sender ID to the receiver ID they give to.
type Assignment map[string]string

// Senders returns the sender IDs in lexicographic order.
func (a Assignment) Senders() []string {
	out := make([]string, 0, len(a))
	for sender := range a {
		out = append(out, sender)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both assignments hold the same pairs.
func (a Assignment) Equal(other Assignment) bool {
	if len(a) != len(other) {
		return false
	}
	for sender, receiver := range a {
		if other[sender] != receiver {
			return false
		}
	}
	return true
}

func (a Assignment) merge(other Assignment) {
	for sender, receiver := range other {
		a[sender] = receiver
	}
}
