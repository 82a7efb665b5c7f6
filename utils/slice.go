package utils

// UniqueUint removes duplicate and zero values from a slice of ids, keeping first-seen order.
func UniqueUint(slice []uint) []uint {
	seen := make(map[uint]struct{}, len(slice))
	list := make([]uint, 0, len(slice))
	for _, id := range slice {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		list = append(list, id)
	}
	return list
}
