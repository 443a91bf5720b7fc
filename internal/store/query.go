package store

// Operator is a field comparison understood by every backend.
type Operator string

const (
	OpEqual            Operator = "=="
	OpNotEqual         Operator = "!="
	OpLess             Operator = "<"
	OpLessOrEqual      Operator = "<="
	OpGreater          Operator = ">"
	OpGreaterOrEqual   Operator = ">="
	OpArrayContains    Operator = "array-contains"
	OpArrayContainsAny Operator = "array-contains-any"
	OpIn               Operator = "in"
	OpNotIn            Operator = "not-in"
)

// Direction of a sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Filter restricts a query to documents whose Field compares to Value.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Order sorts query results by a single field.
type Order struct {
	Field     string
	Direction Direction
}

// Query is an immutable value; the builder methods return modified copies.
type Query struct {
	Filters []Filter
	OrderBy *Order
	Offset  int
	Limit   int
}

// NewQuery returns an empty query matching every document.
func NewQuery() Query {
	return Query{}
}

func (q Query) Where(field string, op Operator, value any) Query {
	filters := make([]Filter, len(q.Filters), len(q.Filters)+1)
	copy(filters, q.Filters)
	q.Filters = append(filters, Filter{Field: field, Op: op, Value: value})
	return q
}

func (q Query) Order(field string, dir Direction) Query {
	q.OrderBy = &Order{Field: field, Direction: dir}
	return q
}

func (q Query) Skip(n int) Query {
	q.Offset = n
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}
