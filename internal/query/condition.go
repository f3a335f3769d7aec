package query

type Operator string

const (
	Eq      Operator = "eq"
	Ne      Operator = "ne"
	Like    Operator = "like"
	NotLike Operator = "not_like"
	In      Operator = "in"
	NotIn   Operator = "not_in"
	Gt      Operator = "gt"
	Lt      Operator = "lt"
	Gte     Operator = "gte"
	Lte     Operator = "lte"
)

// Predicate is a single `column OP value` test.
type Predicate struct {
	Column string
	Op     Operator
	Value  any
}

// GrantScope keeps only rows whose application (referenced by Column) the
// user holds Permission on through a staff grant.
type GrantScope struct {
	Column     string
	UserID     string
	Permission string
}

// Condition is a conjunction of predicates and grant scopes. The zero value
// matches every row.
type Condition struct {
	Predicates []Predicate
	Scopes     []GrantScope
}

func All() Condition { return Condition{} }

// Where starts a condition with one predicate.
func Where(column string, op Operator, value any) Condition {
	return All().And(column, op, value)
}

// And returns a copy of c with one more predicate.
func (c Condition) And(column string, op Operator, value any) Condition {
	out := c.clone()
	out.Predicates = append(out.Predicates, Predicate{Column: column, Op: op, Value: value})
	return out
}

// Merge returns the conjunction of c and other.
func (c Condition) Merge(other Condition) Condition {
	out := c.clone()
	out.Predicates = append(out.Predicates, other.Predicates...)
	out.Scopes = append(out.Scopes, other.Scopes...)
	return out
}

// WithGrant returns a copy of c restricted by a staff grant.
func (c Condition) WithGrant(column, userID, permission string) Condition {
	out := c.clone()
	out.Scopes = append(out.Scopes, GrantScope{Column: column, UserID: userID, Permission: permission})
	return out
}

func (c Condition) IsEmpty() bool {
	return len(c.Predicates) == 0 && len(c.Scopes) == 0
}

func (c Condition) clone() Condition {
	return Condition{
		Predicates: append([]Predicate(nil), c.Predicates...),
		Scopes:     append([]GrantScope(nil), c.Scopes...),
	}
}
