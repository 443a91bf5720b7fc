package store

// UpdateKind selects the field operation an Update performs.
type UpdateKind int

const (
	KindSet UpdateKind = iota
	KindIncrement
	KindArrayUnion
	KindArrayRemove
	KindServerTimestamp
)

// Update is one field operation inside a partial document write.
type Update struct {
	Field  string
	Kind   UpdateKind
	Value  any
	Values []any
	Delta  int64
}

func Set(field string, value any) Update {
	return Update{Field: field, Kind: KindSet, Value: value}
}

// Increment atomically adds delta to a numeric field, treating a missing field as 0.
func Increment(field string, delta int64) Update {
	return Update{Field: field, Kind: KindIncrement, Delta: delta}
}

// ArrayUnion atomically adds values not already present in an array field.
func ArrayUnion(field string, values ...any) Update {
	return Update{Field: field, Kind: KindArrayUnion, Values: values}
}

// ArrayRemove atomically removes every occurrence of values from an array field.
func ArrayRemove(field string, values ...any) Update {
	return Update{Field: field, Kind: KindArrayRemove, Values: values}
}

// ServerTimestamp sets field to the backend's commit time.
func ServerTimestamp(field string) Update {
	return Update{Field: field, Kind: KindServerTimestamp}
}
