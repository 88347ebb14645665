package report

// Group is a run of consecutive items sharing a key.
type Group[T any, K comparable] struct {
	Key   K
	Items []T
}

// GroupBy splits items into runs of equal keys. Unlike a map index it keeps
// the input order and starts a new group whenever the key changes, so a key
// may appear in more than one group.
func GroupBy[T any, K comparable](items []T, key func(T) K) []Group[T, K] {
	if len(items) == 0 {
		return nil
	}

	var groups []Group[T, K]
	cur := Group[T, K]{Key: key(items[0])}
	for _, item := range items {
		k := key(item)
		if k != cur.Key {
			groups = append(groups, cur)
			cur = Group[T, K]{Key: k}
		}
		cur.Items = append(cur.Items, item)
	}
	return append(groups, cur)
}
