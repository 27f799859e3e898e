// Package schema reads table and index definitions from YAML.
//
// A schema file describes every table the process uses. Index kinds are
// always spelled out: an index is LOCAL or GLOBAL because the file says so,
// never because of which attributes it happens to use.
//
//	tables:
//	  - name: HighScores
//	    partitionKey: {name: Username, kind: S}
//	    sortKey: {name: Game, kind: S}
//	    indexes:
//	      - name: GameIndex
//	        kind: GLOBAL
//	        partitionKey: {name: Game, kind: S}
//	        sortKey: {name: TopScore, kind: N}
package schema

// Schema is the root type containing all table definitions.
type Schema struct {
	Tables []Table `yaml:"tables" json:"tables"`
}

type Table struct {
	Name         string  `yaml:"name" json:"name"`
	PartitionKey KeyDef  `yaml:"partitionKey" json:"partitionKey"`
	SortKey      *KeyDef `yaml:"sortKey,omitempty" json:"sortKey,omitempty"`
	Indexes      []Index `yaml:"indexes,omitempty" json:"indexes,omitempty"`
}

// KeyDef describes a key attribute definition.
type KeyDef struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind" json:"kind"` // "S", "N", or "B"
}

// Index describes a secondary index. Local indexes may leave out the
// partition key, they always use the table's.
type Index struct {
	Name         string      `yaml:"name" json:"name"`
	Kind         string      `yaml:"kind" json:"kind"` // "LOCAL" or "GLOBAL"
	PartitionKey *KeyDef     `yaml:"partitionKey,omitempty" json:"partitionKey,omitempty"`
	SortKey      *KeyDef     `yaml:"sortKey,omitempty" json:"sortKey,omitempty"`
	Projection   *Projection `yaml:"projection,omitempty" json:"projection,omitempty"`
}

type Projection struct {
	Type             string   `yaml:"type" json:"type"` // "ALL", "KEYS_ONLY" or "INCLUDE"
	NonKeyAttributes []string `yaml:"nonKeyAttributes,omitempty" json:"nonKeyAttributes,omitempty"`
}
