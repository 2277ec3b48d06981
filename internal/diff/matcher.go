package diff

// pair is one entity from each side sharing an identity key
type pair[T any] struct {
	from T
	to   T
}

// matchSet partitions two same-level entity lists by identity key.
// onlyInFrom keeps "from" order; onlyInTo and pairs keep "to" order.
type matchSet[T any] struct {
	onlyInFrom []T
	onlyInTo   []T
	pairs      []pair[T]
}

// match pairs entities by exact identity-key equality. Keys are assumed
// unique on each side (snapshots are validated before matching).
func match[T any](from, to []T, key func(T) string) matchSet[T] {
	var m matchSet[T]

	fromByKey := make(map[string]T, len(from))
	for _, f := range from {
		fromByKey[key(f)] = f
	}

	toKeys := make(map[string]struct{}, len(to))
	for _, t := range to {
		k := key(t)
		toKeys[k] = struct{}{}
		if f, ok := fromByKey[k]; ok {
			m.pairs = append(m.pairs, pair[T]{from: f, to: t})
		} else {
			m.onlyInTo = append(m.onlyInTo, t)
		}
	}

	for _, f := range from {
		if _, ok := toKeys[key(f)]; !ok {
			m.onlyInFrom = append(m.onlyInFrom, f)
		}
	}

	return m
}
