package object

// Heuristic per-allocation byte costs charged against the memory budget.
// The budget is advisory: it tracks script-visible allocations, not real
// heap usage.
const (
	memPtrSize      int64 = 8
	memStringHead   int64 = 24
	memListHead     int64 = 24
	memDictHead     int64 = 32
	memDictEntry    int64 = 24
	memFunctionHead int64 = 64
	memErrorHead    int64 = 32
)

func CostString(n int) int64 {
	if n < 0 {
		return memStringHead
	}
	return memStringHead + int64(n)
}

func CostList(n int) int64 {
	if n < 0 {
		return memListHead
	}
	return memListHead + int64(n)*memPtrSize
}

func CostListElements(n int) int64 {
	if n <= 0 {
		return 0
	}
	return int64(n) * memPtrSize
}

func CostDict(n int) int64 {
	if n < 0 {
		return memDictHead
	}
	return memDictHead + int64(n)*memDictEntry
}

func CostDictEntry() int64 {
	return memDictEntry
}

func CostFunction() int64 {
	return memFunctionHead
}

func CostError() int64 {
	return memErrorHead
}
