// Package shape projects raw query results into display rows.
package shape

import (
	"encoding/base64"
	"strings"

	"github.com/acksell/highscores/dynamodb/planner"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Fields names the non-key attributes a row may carry.
type Fields struct {
	Score     string
	Timestamp string
}

type Shaper struct {
	fields Fields
}

func New(fields Fields) *Shaper {
	return &Shaper{fields: fields}
}

// Row is one shaped record. Empty fields were absent on the record.
type Row struct {
	Partition string
	Sort      string
	Score     attributevalue.Number
	Timestamp string
}

func (r Row) String() string {
	parts := []string{r.Partition}
	if r.Sort != "" {
		parts = append(parts, r.Sort)
	}
	if r.Score != "" {
		parts = append(parts, r.Score.String())
	}
	if r.Timestamp != "" {
		parts = append(parts, r.Timestamp)
	}
	return strings.Join(parts, " - ")
}

// Shape converts items returned by plan into rows, in order. The timestamp is
// only filled when the plan's access path keys on it.
func (s *Shaper) Shape(plan planner.Plan, items []map[string]types.AttributeValue) []Row {
	keys := plan.Table.KeyDefinitions
	withTimestamp := s.fields.Timestamp != "" && plan.Guarantees(s.fields.Timestamp)

	rows := make([]Row, 0, len(items))
	for _, item := range items {
		row := Row{
			Partition: scalar(item[keys.PartitionKey.Name]),
		}
		if keys.HasSortKey() {
			row.Sort = scalar(item[keys.SortKey.Name])
		}
		if n, ok := item[s.fields.Score].(*types.AttributeValueMemberN); ok {
			row.Score = attributevalue.Number(n.Value)
		}
		if withTimestamp {
			row.Timestamp = scalar(item[s.fields.Timestamp])
		}
		rows = append(rows, row)
	}
	return rows
}

func scalar(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	case *types.AttributeValueMemberB:
		return base64.StdEncoding.EncodeToString(v.Value)
	}
	return ""
}
