package utility

// Contains kiểm tra một phần tử có trong slice hay không
func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// AddUnique thêm item nếu chưa có (tương đương $addToSet)
func AddUnique[T comparable](slice []T, item T) []T {
	if Contains(slice, item) {
		return slice
	}
	return append(slice, item)
}

// Remove trả về slice mới không còn các phần tử bằng item (tương đương $pull)
func Remove[T comparable](slice []T, item T) []T {
	out := make([]T, 0, len(slice))
	for _, v := range slice {
		if v != item {
			out = append(out, v)
		}
	}
	return out
}

// RemoveAll bỏ mọi phần tử nằm trong items (tương đương $pull + $in)
func RemoveAll[T comparable](slice []T, items []T) []T {
	drop := make(map[T]struct{}, len(items))
	for _, it := range items {
		drop[it] = struct{}{}
	}
	out := make([]T, 0, len(slice))
	for _, v := range slice {
		if _, ok := drop[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
