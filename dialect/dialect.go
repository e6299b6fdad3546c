package dialect

import "fmt"

// Store names.
const (
	DynamoDB = "dynamodb"
	MySQL    = "mysql"
	Postgres = "postgres"
)

// Class groups stores by how relations are addressed on them.
type Class int

// Store classes.
const (
	Unknown Class = iota
	KeyValue
	Relational
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case KeyValue:
		return "key-value"
	case Relational:
		return "relational"
	default:
		return "unknown"
	}
}

// ClassOf returns the class of the named store.
func ClassOf(name string) (Class, error) {
	switch name {
	case DynamoDB:
		return KeyValue, nil
	case MySQL, Postgres:
		return Relational, nil
	default:
		return Unknown, fmt.Errorf("dialect: unknown store %q", name)
	}
}
