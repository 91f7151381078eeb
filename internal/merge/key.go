package merge

import "github.com/JonMunkholm/sheetmerge/internal/record"

// ResolveKey picks the merge key column for a batch from its first record.
//
// The preferred column is chosen whenever first has it, even with a null value.
// Otherwise the first column of first is chosen and fellBack is true.
// A record with no columns yields ErrUnresolvableKey.
func ResolveKey(first record.Record, preferred string) (key string, fellBack bool, err error) {
	if preferred != "" && first.Has(preferred) {
		return preferred, false, nil
	}

	keys := first.Keys()
	if len(keys) == 0 {
		return "", false, ErrUnresolvableKey
	}
	return keys[0], true, nil
}
