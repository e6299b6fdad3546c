package dialect

// Argument names read by relation plans at request time.
const (
	ArgFilter        = "filter"
	ArgLimit         = "limit"
	ArgNextToken     = "nextToken"
	ArgSortDirection = "sortDirection"

	// StashConnectionAttributes is the stash entry under which upstream
	// resolvers cache connection attribute values.
	StashConnectionAttributes = "connectionAttributes"
)

// DefaultLimit is the page size of a to-many relation without an explicit
// limit.
const DefaultLimit = 100

// ValueRef locates a key value at request time: a connection attribute
// cached in the stash takes precedence over the source record attribute.
type ValueRef struct {
	Attribute string `json:"attribute"`
	StashKey  string `json:"stashKey,omitempty"`
}

// Resolve returns the referenced value or nil.
func (r ValueRef) Resolve(source, stash map[string]any) any {
	if r.StashKey != "" {
		if cached, ok := stash[StashConnectionAttributes].(map[string]any); ok {
			if v := cached[r.StashKey]; v != nil {
				return v
			}
		}
	}
	return source[r.Attribute]
}

// Page is the result of a to-many relation.
type Page struct {
	Items     []map[string]any `json:"items"`
	NextToken *string          `json:"nextToken"`
}

// EmptyPage returns a page with no items and no token.
func EmptyPage() *Page {
	return &Page{Items: []map[string]any{}}
}

// Descending reports whether args request a descending sort.
func Descending(args map[string]any) bool {
	d, _ := args[ArgSortDirection].(string)
	return d == "DESC"
}

// IntArg returns the integer value of the named argument.
func IntArg(args map[string]any, name string) (int, bool) {
	switch n := args[name].(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
