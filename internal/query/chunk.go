package query

// chunkSubjects splits subjects into consecutive groups of at most maxCount
// entries whose argument bytes (len+1 each) stay within maxBytes. A subject
// is never split; one that alone exceeds maxBytes gets a chunk of its own.
func chunkSubjects(subjects []string, maxCount, maxBytes int) [][]string {
	if len(subjects) == 0 {
		return nil
	}
	if maxCount <= 0 {
		maxCount = len(subjects)
	}

	var (
		chunks  [][]string
		current []string
		size    int
	)

	for _, s := range subjects {
		cost := len(s) + 1
		full := len(current) >= maxCount || (maxBytes > 0 && size+cost > maxBytes)
		if len(current) > 0 && full {
			chunks = append(chunks, current)
			current, size = nil, 0
		}
		current = append(current, s)
		size += cost
	}

	return append(chunks, current)
}
