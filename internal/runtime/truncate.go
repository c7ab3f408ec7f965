package runtime

// truncateToBudget returns the longest prefix of text that counts to at
// most limit tokens, along with that prefix's token count. count must not
// shrink as the prefix grows; tokenizers satisfy that.
func truncateToBudget(text string, limit int, count func(string) (int, error)) (string, int, error) {
	runes := []rune(text)
	keep, keepTokens := 0, 0
	lo, hi := 0, len(runes)
	for lo <= hi {
		mid := (lo + hi) / 2
		n, err := count(string(runes[:mid]))
		if err != nil {
			return "", 0, err
		}
		if n <= limit {
			keep, keepTokens = mid, n
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return string(runes[:keep]), keepTokens, nil
}
