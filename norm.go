package norm

import (
	"github.com/nerdsrescueme/norm/core"
	"github.com/nerdsrescueme/norm/datastore"
	"github.com/nerdsrescueme/norm/schema"
)

// Re-export core types and functions
type DB = core.DB
type Model = core.Model
type Tx = core.Tx
type Options = core.Options
type ExecResult = core.ExecResult
type DBError = core.DBError

var (
	Open      = core.Open
	Translate = core.Translate
)

// Sentinel errors
var (
	ErrRecordNotFound  = core.ErrRecordNotFound
	ErrUnknownColumn   = core.ErrUnknownColumn
	ErrNoPrimaryKey    = core.ErrNoPrimaryKey
	ErrUnknownDialect  = core.ErrUnknownDialect
	ErrUnknownRelation = core.ErrUnknownRelation
	ErrDuplicateKey    = core.ErrDuplicateKey
	ErrForeignKey      = core.ErrForeignKey
)

// Re-export schema types
type Table = schema.Table
type Column = schema.Column
type Constraint = schema.Constraint
type Registry = schema.Registry

// Re-export datastore backends for schema caching
type Store = datastore.Store

var (
	NewMemoryStore = datastore.NewMemory
	NewFileStore   = datastore.NewFile
	NewRedisStore  = datastore.NewRedis
)
