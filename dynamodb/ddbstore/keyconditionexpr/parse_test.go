package keyconditionexpr

import (
	"testing"

	"github.com/acksell/highscores/dynamodb/ddbstore/keyconditionexpr/ast"
	"github.com/acksell/highscores/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreKeys = table.PrimaryKeyDefinition{
	PartitionKey: table.KeyDef{Name: "Game", Kind: table.KeyKindS},
	SortKey:      table.KeyDef{Name: "TopScore", Kind: table.KeyKindN},
}

var tableKeysOnlyPK = table.PrimaryKeyDefinition{
	PartitionKey: table.KeyDef{Name: "pk", Kind: table.KeyKindS},
}

func parseBuilder(t *testing.T, cond expression.KeyConditionBuilder, keys table.PrimaryKeyDefinition) (*ast.KeyCondition, error) {
	t.Helper()
	expr, err := expression.NewBuilder().WithKeyCondition(cond).Build()
	require.NoError(t, err)
	return Parse(*expr.KeyCondition(), ParseParams{
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		TableKeys:                 keys,
	})
}

func TestParse_Builder(t *testing.T) {
	game := expression.Key("Game").Equal(expression.Value("Tetris"))
	score := expression.Key("TopScore")
	tests := []struct {
		name    string
		cond    expression.KeyConditionBuilder
		keys    table.PrimaryKeyDefinition
		wantErr bool
		wantSK  *ast.SortKeyCondition
	}{
		{
			name: "partition only",
			cond: game,
			keys: scoreKeys,
		},
		{
			name: "partition only on table without sort key",
			cond: expression.Key("pk").Equal(expression.Value("abc")),
			keys: tableKeysOnlyPK,
		},
		{
			name:    "wrong partition key",
			cond:    expression.Key("badpk").Equal(expression.Value("abc")),
			keys:    tableKeysOnlyPK,
			wantErr: true,
		},
		{
			name:    "partition value of wrong type",
			cond:    expression.Key("Game").Equal(expression.Value(12)),
			keys:    scoreKeys,
			wantErr: true,
		},
		{
			name:    "sort key only",
			cond:    score.Equal(expression.Value(10)),
			keys:    scoreKeys,
			wantErr: true,
		},
		{
			name:   "equal",
			cond:   game.And(score.Equal(expression.Value(10))),
			keys:   scoreKeys,
			wantSK: &ast.SortKeyCondition{Compare: &ast.KeyComparison{KeyName: "TopScore", Comp: ast.Equal, Value: ast.KeyValue{Value: "10", Type: ast.NUMBER}}},
		},
		{
			name:   "less than",
			cond:   game.And(score.LessThan(expression.Value(10))),
			keys:   scoreKeys,
			wantSK: &ast.SortKeyCondition{Compare: &ast.KeyComparison{KeyName: "TopScore", Comp: ast.LessThan, Value: ast.KeyValue{Value: "10", Type: ast.NUMBER}}},
		},
		{
			name:   "greater or equal",
			cond:   game.And(score.GreaterThanEqual(expression.Value(10))),
			keys:   scoreKeys,
			wantSK: &ast.SortKeyCondition{Compare: &ast.KeyComparison{KeyName: "TopScore", Comp: ast.GreaterOrEqual, Value: ast.KeyValue{Value: "10", Type: ast.NUMBER}}},
		},
		{
			name: "between",
			cond: game.And(score.Between(expression.Value(1), expression.Value(5))),
			keys: scoreKeys,
			wantSK: &ast.SortKeyCondition{Between: &ast.KeyBetween{
				KeyName: "TopScore",
				Lower:   ast.KeyValue{Value: "1", Type: ast.NUMBER},
				Upper:   ast.KeyValue{Value: "5", Type: ast.NUMBER},
			}},
		},
		{
			name:    "between with bounds reversed",
			cond:    game.And(score.Between(expression.Value(5), expression.Value(1))),
			keys:    scoreKeys,
			wantErr: true,
		},
		{
			name:    "begins_with on number key",
			cond:    game.And(expression.KeyBeginsWith(score, "1")),
			keys:    scoreKeys,
			wantErr: true,
		},
		{
			name:    "sort value of wrong type",
			cond:    game.And(score.Equal(expression.Value("ten"))),
			keys:    scoreKeys,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kc, err := parseBuilder(t, tt.cond, tt.keys)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.keys.PartitionKey.Name, kc.PartitionKeyCond.KeyName)
			assert.Equal(t, tt.wantSK, kc.SortKeyCond)
		})
	}
}

func TestParse_RawExpressions(t *testing.T) {
	keys := table.PrimaryKeyDefinition{
		PartitionKey: table.KeyDef{Name: "Username", Kind: table.KeyKindS},
		SortKey:      table.KeyDef{Name: "Game", Kind: table.KeyKindS},
	}
	values := map[string]types.AttributeValue{
		":v_Id":   &types.AttributeValueMemberS{Value: "CFGV"},
		":v_Game": &types.AttributeValueMemberS{Value: "Tetris"},
		":lo":     &types.AttributeValueMemberS{Value: "A"},
		":hi":     &types.AttributeValueMemberS{Value: "M"},
		":p":      &types.AttributeValueMemberS{Value: "Super"},
	}
	names := map[string]string{"#u": "Username", "#g": "Game"}

	tests := []struct {
		expr    string
		wantSK  string
		wantErr bool
	}{
		{expr: "Username = :v_Id"},
		{expr: "Username = :v_Id and Game = :v_Game", wantSK: "Game"},
		{expr: "Game = :v_Game AND Username = :v_Id", wantSK: "Game"},
		{expr: "(#u = :v_Id) AND (#g = :v_Game)", wantSK: "Game"},
		{expr: "((#u = :v_Id))"},
		{expr: "#u = :v_Id AND #g BETWEEN :lo AND :hi", wantSK: "Game"},
		{expr: "#u = :v_Id AND begins_with(#g, :p)", wantSK: "Game"},
		{expr: "#u = :v_Id AND #g >= :lo", wantSK: "Game"},
		{expr: "#u = :v_Id AND #g <> :lo", wantErr: true},
		{expr: "#u = :v_Id AND #g = :v_Game AND #g = :lo", wantErr: true},
		{expr: "#u = :v_Id AND #u = :v_Id", wantErr: true},
		{expr: "#u < :v_Id", wantErr: true},
		{expr: "#missing = :v_Id", wantErr: true},
		{expr: "#u = :missing", wantErr: true},
		{expr: "#u = :v_Id AND", wantErr: true},
		{expr: "(#u = :v_Id", wantErr: true},
		{expr: "#u = :v_Id)", wantErr: true},
		{expr: "#u = :v_Id OR #g = :v_Game", wantErr: true},
		{expr: "Score = :v_Id", wantErr: true},
		{expr: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			kc, err := Parse(tt.expr, ParseParams{
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
				TableKeys:                 keys,
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Username", kc.PartitionKeyCond.KeyName)
			assert.Equal(t, ast.KeyValue{Value: "CFGV", Type: ast.STRING}, kc.PartitionKeyCond.Value)
			if tt.wantSK == "" {
				assert.Nil(t, kc.SortKeyCond)
				return
			}
			require.NotNil(t, kc.SortKeyCond)
			assert.Equal(t, tt.wantSK, kc.SortKeyCond.KeyName())
		})
	}
}

func TestSortKeyCondition_Matches(t *testing.T) {
	num := func(s string) ast.KeyValue { return ast.KeyValue{Value: s, Type: ast.NUMBER} }
	str := func(s string) ast.KeyValue { return ast.KeyValue{Value: s, Type: ast.STRING} }

	tests := []struct {
		name string
		cond *ast.SortKeyCondition
		v    ast.KeyValue
		want bool
	}{
		{"numeric not lexical", &ast.SortKeyCondition{Compare: &ast.KeyComparison{Comp: ast.LessThan, Value: num("10")}}, num("9"), true},
		{"greater than equal", &ast.SortKeyCondition{Compare: &ast.KeyComparison{Comp: ast.GreaterThan, Value: num("10")}}, num("10"), false},
		{"between inclusive low", &ast.SortKeyCondition{Between: &ast.KeyBetween{Lower: num("1"), Upper: num("5")}}, num("1"), true},
		{"between inclusive high", &ast.SortKeyCondition{Between: &ast.KeyBetween{Lower: num("1"), Upper: num("5")}}, num("5"), true},
		{"between outside", &ast.SortKeyCondition{Between: &ast.KeyBetween{Lower: num("1"), Upper: num("5")}}, num("5.5"), false},
		{"beyond float precision", &ast.SortKeyCondition{Compare: &ast.KeyComparison{Comp: ast.GreaterThan, Value: num("9007199254740992")}}, num("9007199254740993"), true},
		{"negative zero equals zero", &ast.SortKeyCondition{Compare: &ast.KeyComparison{Comp: ast.Equal, Value: num("0")}}, num("-0"), true},
		{"begins with", &ast.SortKeyCondition{BeginsWith: &ast.KeyBeginsWith{Prefix: str("Super")}}, str("Super Mario Bros"), true},
		{"begins with miss", &ast.SortKeyCondition{BeginsWith: &ast.KeyBeginsWith{Prefix: str("Super")}}, str("Tetris"), false},
		{"string order", &ast.SortKeyCondition{Compare: &ast.KeyComparison{Comp: ast.LessOrEqual, Value: str("b")}}, str("ab"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cond.Matches(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := (&ast.SortKeyCondition{Compare: &ast.KeyComparison{Comp: ast.Equal, Value: num("1")}}).Matches(str("1"))
	assert.Error(t, err)
}
