package reconcile

import (
	"github.com/kbvlyon/visitsync/internal/identity"
	"github.com/kbvlyon/visitsync/internal/model"
)

// Unify merges two keyed collections. Entries of incoming replace entries of
// current with the same key as whole records, keeping the position of the
// first occurrence; new keys are appended in the order they are first seen.
//
// Entries sharing a key inside one collection collapse to the last of them.
func Unify[T any](current, incoming []T, key func(T) string) []T {
	out := make([]T, 0, len(current)+len(incoming))
	index := make(map[string]int, len(current)+len(incoming))

	put := func(item T) {
		k := key(item)
		if i, ok := index[k]; ok {
			out[i] = item
			return
		}
		index[k] = len(out)
		out = append(out, item)
	}

	for _, item := range current {
		put(item)
	}
	for _, item := range incoming {
		put(item)
	}
	return out
}

// UnifySpeakers unifies speakers by id, or by normalized name when the id
// is unknown to the other side. A speaker matched by name keeps its stored
// id.
func UnifySpeakers(current, incoming []model.Speaker) []model.Speaker {
	return unifyIdentified(current, incoming,
		func(s model.Speaker) string { return s.ID },
		identity.SpeakerKey,
		func(s model.Speaker, id string) model.Speaker { s.ID = id; return s })
}

// UnifyHosts unifies hosts like UnifySpeakers.
func UnifyHosts(current, incoming []model.Host) []model.Host {
	return unifyIdentified(current, incoming,
		func(h model.Host) string { return h.ID },
		identity.HostKey,
		func(h model.Host, id string) model.Host { h.ID = id; return h })
}

// unifyIdentified is Unify for records carrying an optional id. A record
// replaces the entry with the same id, else the entry with the same key.
func unifyIdentified[T any](current, incoming []T, id, key func(T) string, withID func(T, string) T) []T {
	out := make([]T, 0, len(current)+len(incoming))
	byID := make(map[string]int, len(current)+len(incoming))
	byKey := make(map[string]int, len(current)+len(incoming))

	index := func(i int) {
		if v := id(out[i]); v != "" {
			byID[v] = i
		}
		byKey[key(out[i])] = i
	}

	put := func(item T) {
		i, ok := -1, false
		if v := id(item); v != "" {
			i, ok = byID[v]
		}
		if !ok {
			if i, ok = byKey[key(item)]; ok {
				if stored := id(out[i]); stored != "" {
					item = withID(item, stored)
				}
			}
		}
		if !ok {
			out = append(out, item)
			index(len(out) - 1)
			return
		}
		if k := key(out[i]); byKey[k] == i {
			delete(byKey, k)
		}
		out[i] = item
		index(i)
	}

	for _, item := range current {
		put(item)
	}
	for _, item := range incoming {
		put(item)
	}
	return out
}

// renamed maps the normalized former name of every record whose key changed
// between before and after to its current name. Records are matched by id.
func renamed[T any](before, after []T, id, key func(T) string, name func(T) string) map[string]string {
	now := make(map[string]T, len(after))
	for _, item := range after {
		if v := id(item); v != "" {
			now[v] = item
		}
	}
	aliases := make(map[string]string)
	for _, item := range before {
		cur, ok := now[id(item)]
		if !ok || key(cur) == key(item) {
			continue
		}
		aliases[key(item)] = name(cur)
	}
	return aliases
}

// KeyCollision is a key shared by several entries of one collection.
type KeyCollision struct {
	Key     string
	Indexes []int
}

// FindKeyCollisions returns the keys that occur more than once in items,
// in order of first occurrence.
func FindKeyCollisions[T any](items []T, key func(T) string) []KeyCollision {
	seen := make(map[string][]int)
	var order []string
	for i, item := range items {
		k := key(item)
		if _, ok := seen[k]; !ok {
			order = append(order, k)
		}
		seen[k] = append(seen[k], i)
	}

	var out []KeyCollision
	for _, k := range order {
		if len(seen[k]) > 1 {
			out = append(out, KeyCollision{Key: k, Indexes: seen[k]})
		}
	}
	return out
}
