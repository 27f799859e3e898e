// Package ddbstore is a DynamoDB-compatible store backed by BadgerDB.
//
// It implements the subset of the DynamoDB API used for reads and seeding
// (PutItem, GetItem, DeleteItem, BatchWriteItem, Query and CreateTable) and
// maintains local and global secondary indexes on every write.
package ddbstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/acksell/highscores/dynamodb/ddbiface"
	"github.com/acksell/highscores/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dgraph-io/badger/v4"
)

// ErrValidation is returned for requests DynamoDB would reject with a
// ValidationException.
var ErrValidation = errors.New("validation error")

var (
	_ ddbiface.AWSDynamoClientV2 = (*Store)(nil)
	_ ddbiface.TableCreator      = (*Store)(nil)
)

// Store is a DynamoDB-compatible store backed by BadgerDB.
// It is safe for concurrent use.
type Store struct {
	db *badger.DB

	mu       sync.RWMutex
	registry *table.Registry
	tables   map[string]*tableSchema
}

type tableSchema struct {
	definition table.TableDefinition
	encoder    *keyEncoder
	indexes    map[string]*indexSchema
}

type indexSchema struct {
	definition table.IndexDefinition
	encoder    *keyEncoder
}

func newTableSchema(def table.TableDefinition) *tableSchema {
	schema := &tableSchema{
		definition: def,
		encoder:    newTableEncoder(def),
		indexes:    make(map[string]*indexSchema, len(def.Indexes)),
	}
	for _, idx := range def.Indexes {
		schema.indexes[idx.Name] = &indexSchema{
			definition: idx,
			encoder:    newIndexEncoder(def.Name, idx.Name, idx.KeyDefinitions),
		}
	}
	return schema
}

// itemKey encodes the table key found in attrs.
func (t *tableSchema) itemKey(attrs map[string]types.AttributeValue) ([]byte, error) {
	pk, err := t.definition.ExtractPrimaryKey(attrs)
	if err != nil {
		return nil, fmt.Errorf("%w: table %s: %v", ErrValidation, t.definition.Name, err)
	}
	key, err := t.encoder.encode(pk)
	if err != nil {
		return nil, fmt.Errorf("encode key: %w", err)
	}
	return key, nil
}

// StoreOptions configures the BadgerDB store.
type StoreOptions struct {
	// Path to the database directory. If empty, uses in-memory mode.
	Path string
	// InMemory forces in-memory mode even if Path is set.
	InMemory bool
	// Logger for BadgerDB. If nil, logging is disabled. See NewSlogLogger.
	Logger badger.Logger
}

// New opens a BadgerDB-backed DynamoDB store with the given tables.
// Table definitions are validated like registry definitions.
func New(opts StoreOptions, defs ...table.TableDefinition) (*Store, error) {
	reg, err := table.NewRegistry(defs...)
	if err != nil {
		return nil, err
	}

	badgerOpts := badger.DefaultOptions(opts.Path)
	if opts.Path == "" || opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	badgerOpts = badgerOpts.WithLogger(opts.Logger)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	tables := make(map[string]*tableSchema)
	for _, def := range reg.Tables() {
		tables[def.Name] = newTableSchema(def)
	}
	return &Store{
		db:       db,
		registry: reg,
		tables:   tables,
	}, nil
}

// Close closes the BadgerDB database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getTable(tableName *string) (*tableSchema, error) {
	if tableName == nil {
		return nil, fmt.Errorf("table name is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, ok := s.tables[*tableName]
	if !ok {
		return nil, &types.ResourceNotFoundException{
			Message: aws.String(fmt.Sprintf("table not found: %s", *tableName)),
		}
	}
	return schema, nil
}

// CreateTable registers a new table. Data of tables created in an earlier
// session on the same path stays readable once the table is created again.
func (s *Store) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}
	def, err := table.FromCreateTableInput(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[def.Name]; ok {
		return nil, &types.ResourceInUseException{
			Message: aws.String(fmt.Sprintf("table already exists: %s", def.Name)),
		}
	}
	if err := s.registry.Register(def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	def, err = s.registry.Resolve(def.Name)
	if err != nil {
		return nil, err
	}
	s.tables[def.Name] = newTableSchema(def)

	return &dynamodb.CreateTableOutput{
		TableDescription: &types.TableDescription{
			TableName:   aws.String(def.Name),
			TableStatus: types.TableStatusActive,
		},
	}, nil
}
