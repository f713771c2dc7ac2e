package reconcile

import (
	"sort"

	"github.com/kbvlyon/visitsync/internal/model"
)

func talkKey(t model.Talk) string { return t.Number.String() }

// MergeTalks unions talks by number; imported entries replace current ones
// with the same number. A nil incoming list leaves current as is.
func MergeTalks(current, incoming []model.Talk) []model.Talk {
	if incoming == nil {
		return current
	}
	return Unify(current, incoming, talkKey)
}

// SortTalks orders numbered talks ascending, then coded talks alphabetically.
func SortTalks(talks []model.Talk) []model.Talk {
	out := append([]model.Talk(nil), talks...)
	sort.SliceStable(out, func(i, j int) bool {
		a, aNum := out[i].Number.Int()
		b, bNum := out[j].Number.Int()
		switch {
		case aNum && bNum:
			return a < b
		case aNum != bNum:
			return aNum
		default:
			return out[i].Number.String() < out[j].Number.String()
		}
	})
	return out
}
