package gen

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/relgen/dialect/dynamodb"
	"github.com/syssam/relgen/dialect/sql"
	"github.com/syssam/relgen/schema"
)

// Data source types.
const (
	DataSourceDynamoDB = "AMAZON_DYNAMODB"
	DataSourceFunction = "AWS_LAMBDA"
)

// Table is the storage of one key-value model.
type Table struct {
	TypeName     string                 `json:"typeName"`
	Name         string                 `json:"tableName"`
	PartitionKey dynamodb.KeyAttribute  `json:"partitionKey"`
	SortKey      *dynamodb.KeyAttribute `json:"sortKey,omitempty"`
	// Indexes are the secondary indexes synthesized for relations.
	Indexes []*dynamodb.IndexSpec `json:"globalSecondaryIndexes,omitempty"`
	// Overrides are the low-level index records matching Indexes.
	Overrides            []types.GlobalSecondaryIndex `json:"overrides,omitempty"`
	AttributeDefinitions []types.AttributeDefinition  `json:"attributeDefinitions,omitempty"`
}

// Index returns the synthesized index with the given name, or nil.
func (t *Table) Index(name string) *dynamodb.IndexSpec {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx
		}
	}
	return nil
}

// AddIndex records spec and its low-level override.
func (t *Table) AddIndex(spec *dynamodb.IndexSpec, params dynamodb.Throughput) {
	t.Indexes = append(t.Indexes, spec)
	t.Overrides = append(t.Overrides, spec.GlobalSecondaryIndex(params))
	for _, def := range spec.AttributeDefinitions() {
		if !slices.ContainsFunc(t.AttributeDefinitions, func(d types.AttributeDefinition) bool {
			return *d.AttributeName == *def.AttributeName
		}) {
			t.AttributeDefinitions = append(t.AttributeDefinitions, def)
		}
	}
}

// DataSource is the backend a resolver reads from.
type DataSource struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Table    string `json:"table,omitempty"`
	Function string `json:"function,omitempty"`
}

// Resolver is the compiled read path of one relation field.
type Resolver struct {
	TypeName   string              `json:"typeName"`
	FieldName  string              `json:"fieldName"`
	DataSource string              `json:"dataSource"`
	Query      *dynamodb.QueryPlan `json:"query,omitempty"`
	Invoke     *sql.InvokePlan     `json:"invoke,omitempty"`
}

type fieldKey struct{ typeName, fieldName string }

// Context is the state shared by all compilation phases. It is not safe for
// concurrent use.
type Context struct {
	Config *Config
	// Doc is the working schema document.
	Doc *ast.SchemaDocument
	// Mappings holds the foreign key renames registered during prepare.
	Mappings *FieldMappings
	Logger   *slog.Logger

	tables        map[string]*Table
	datasources   map[string]*DataSource
	resolvers     map[fieldKey]*Resolver
	resolverOrder []fieldKey
	joinTypes     []string
	connections   map[string][]string
}

// NewContext returns a context compiling a copy of doc.
func NewContext(cfg *Config, doc *ast.SchemaDocument) *Context {
	if cfg == nil {
		cfg = MustNewConfig()
	}
	return &Context{
		Config:      cfg,
		Doc:         schema.Clone(doc),
		Mappings:    NewFieldMappings(),
		Logger:      cfg.Log(),
		tables:      make(map[string]*Table),
		datasources: make(map[string]*DataSource),
		resolvers:   make(map[fieldKey]*Resolver),
		connections: make(map[string][]string),
	}
}

// Object returns the named object type of the working document.
func (c *Context) Object(name string) *ast.Definition {
	return schema.Object(c.Doc, name)
}

// Table returns the table of the named model, creating it on first use.
func (c *Context) Table(typeName string) (*Table, error) {
	if t, ok := c.tables[typeName]; ok {
		return t, nil
	}
	def := c.Object(typeName)
	if !schema.IsModel(def) {
		return nil, NewSchemaError(typeName, "", "not a model type", nil)
	}
	pk := schema.PrimaryKey(def)
	t := &Table{
		TypeName: typeName,
		Name:     c.Config.TableName(schema.MappedName(def)),
		PartitionKey: dynamodb.KeyAttribute{
			Name: pk.PartitionField(),
			Type: dynamodb.AttributeType(schema.FieldType(def, pk.PartitionField())),
		},
	}
	switch sort := pk.SortFields(); len(sort) {
	case 0:
	case 1:
		t.SortKey = &dynamodb.KeyAttribute{Name: sort[0], Type: dynamodb.AttributeType(schema.FieldType(def, sort[0]))}
	default:
		t.SortKey = &dynamodb.KeyAttribute{Name: dynamodb.CondensedName(sort...), Type: types.ScalarAttributeTypeS}
	}
	c.tables[typeName] = t
	return t, nil
}

// DataSource returns the data source of the named model, creating it on
// first use.
func (c *Context) DataSource(typeName string) (*DataSource, error) {
	if ds, ok := c.datasources[typeName]; ok {
		return ds, nil
	}
	store, err := c.Config.StoreOf(typeName)
	if err != nil {
		return nil, NewConfigError("Store", typeName, err.Error())
	}
	var ds *DataSource
	switch store.DataSource {
	case DataSourceDynamoDB:
		t, err := c.Table(typeName)
		if err != nil {
			return nil, err
		}
		ds = &DataSource{Name: typeName + "Table", Type: DataSourceDynamoDB, Table: t.Name}
	default:
		ds = &DataSource{Name: typeName + "SQLFunction", Type: store.DataSource, Function: c.Config.Function()}
	}
	c.datasources[typeName] = ds
	return ds, nil
}

// Resolver returns the resolver of a relation field. The first request
// builds it; later requests return the same resolver.
func (c *Context) Resolver(typeName, fieldName string, build func() (*Resolver, error)) (*Resolver, error) {
	k := fieldKey{typeName, fieldName}
	if r, ok := c.resolvers[k]; ok {
		return r, nil
	}
	r, err := build()
	if err != nil {
		return nil, err
	}
	c.resolvers[k] = r
	c.resolverOrder = append(c.resolverOrder, k)
	return r, nil
}

// LookupResolver returns the resolver of a relation field, if built.
func (c *Context) LookupResolver(typeName, fieldName string) (*Resolver, bool) {
	r, ok := c.resolvers[fieldKey{typeName, fieldName}]
	return r, ok
}

// AddJoinType records a type synthesized for a many-to-many relation.
func (c *Context) AddJoinType(name string) {
	if !slices.Contains(c.joinTypes, name) {
		c.joinTypes = append(c.joinTypes, name)
	}
}

// JoinTypes returns the synthesized join type names.
func (c *Context) JoinTypes() []string {
	return slices.Clone(c.joinTypes)
}

// IsJoinType reports whether name is a synthesized join type.
func (c *Context) IsJoinType(name string) bool {
	return slices.Contains(c.joinTypes, name)
}

// AddConnectionField records that writes of typeName carry the relation
// field, so that its resolvers account for it.
func (c *Context) AddConnectionField(typeName, field string) {
	if !slices.Contains(c.connections[typeName], field) {
		c.connections[typeName] = append(c.connections[typeName], field)
	}
}

// ConnectionFields returns the connection fields recorded for typeName.
func (c *Context) ConnectionFields(typeName string) []string {
	return slices.Clone(c.connections[typeName])
}

// Output collects the artifacts of the compilation.
func (c *Context) Output() *Output {
	out := &Output{
		Config:           c.Config,
		Schema:           c.Doc,
		Mappings:         c.Mappings,
		JoinTypes:        c.JoinTypes(),
		ConnectionFields: maps.Clone(c.connections),
	}
	for _, name := range slices.Sorted(maps.Keys(c.tables)) {
		out.Tables = append(out.Tables, c.tables[name])
	}
	for _, name := range slices.Sorted(maps.Keys(c.datasources)) {
		out.DataSources = append(out.DataSources, c.datasources[name])
	}
	for _, k := range c.resolverOrder {
		out.Resolvers = append(out.Resolvers, c.resolvers[k])
	}
	return out
}

// Output holds the compiled artifacts.
type Output struct {
	Config           *Config             `json:"-"`
	Schema           *ast.SchemaDocument `json:"-"`
	Tables           []*Table            `json:"tables"`
	DataSources      []*DataSource       `json:"dataSources"`
	Resolvers        []*Resolver         `json:"resolvers"`
	Mappings         *FieldMappings      `json:"-"`
	JoinTypes        []string            `json:"joinTypes,omitempty"`
	ConnectionFields map[string][]string `json:"connectionFields,omitempty"`
}

// Table returns the table of the named model, or nil.
func (o *Output) Table(typeName string) *Table {
	for _, t := range o.Tables {
		if t.TypeName == typeName {
			return t
		}
	}
	return nil
}

// Resolver returns the resolver of a relation field, or nil.
func (o *Output) Resolver(typeName, fieldName string) *Resolver {
	for _, r := range o.Resolvers {
		if r.TypeName == typeName && r.FieldName == fieldName {
			return r
		}
	}
	return nil
}
