// Package keyconditionexpr parses DynamoDB KeyConditionExpressions.
//
// Supported forms are the ones DynamoDB accepts for queries: an equality on
// the partition key, optionally joined with AND to one sort key condition
// using =, <, <=, >, >=, BETWEEN or begins_with. Conditions may be wrapped in
// parentheses. Attribute names may be given directly or as #name
// placeholders, values only as :value placeholders.
package keyconditionexpr

import (
	"fmt"

	"github.com/acksell/highscores/dynamodb/ddbstore/keyconditionexpr/ast"
	"github.com/acksell/highscores/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// External API for the parser.
type ParseParams struct {
	ExpressionAttributeNames  map[string]string
	ExpressionAttributeValues map[string]types.AttributeValue
	TableKeys                 table.PrimaryKeyDefinition
}

func Parse(expr string, params ParseParams) (*ast.KeyCondition, error) {
	toks, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, params: params}
	conds, err := p.parseConjunction()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %s", tok)
	}
	return build(conds, params.TableKeys)
}

// rawCondition is a single comparison before it is assigned to a key.
type rawCondition struct {
	name   string
	op     string
	values []ast.KeyValue
}

type parser struct {
	toks   []token
	pos    int
	params ParseParams
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, fmt.Errorf("expected %s, got %s", what, tok)
	}
	return tok, nil
}

func (p *parser) parseConjunction() ([]rawCondition, error) {
	conds, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		more, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		conds = append(conds, more...)
	}
	return conds, nil
}

func (p *parser) parseUnary() ([]rawCondition, error) {
	if p.peek().kind == tokLParen {
		p.next()
		conds, err := p.parseConjunction()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return conds, nil
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	return []rawCondition{cond}, nil
}

func (p *parser) parseCondition() (rawCondition, error) {
	if p.peek().kind == tokBeginsWith {
		p.next()
		if _, err := p.expect(tokLParen, "'(' after begins_with"); err != nil {
			return rawCondition{}, err
		}
		name, err := p.parseName()
		if err != nil {
			return rawCondition{}, err
		}
		if _, err := p.expect(tokComma, "','"); err != nil {
			return rawCondition{}, err
		}
		prefix, err := p.parseValue()
		if err != nil {
			return rawCondition{}, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return rawCondition{}, err
		}
		return rawCondition{name: name, op: "begins_with", values: []ast.KeyValue{prefix}}, nil
	}

	name, err := p.parseName()
	if err != nil {
		return rawCondition{}, err
	}
	tok := p.next()
	switch tok.kind {
	case tokComparator:
		v, err := p.parseValue()
		if err != nil {
			return rawCondition{}, err
		}
		return rawCondition{name: name, op: tok.text, values: []ast.KeyValue{v}}, nil
	case tokBetween:
		lo, err := p.parseValue()
		if err != nil {
			return rawCondition{}, err
		}
		if _, err := p.expect(tokAnd, "AND in BETWEEN"); err != nil {
			return rawCondition{}, err
		}
		hi, err := p.parseValue()
		if err != nil {
			return rawCondition{}, err
		}
		return rawCondition{name: name, op: "BETWEEN", values: []ast.KeyValue{lo, hi}}, nil
	}
	return rawCondition{}, fmt.Errorf("expected comparator or BETWEEN, got %s", tok)
}

func (p *parser) parseName() (string, error) {
	tok := p.next()
	switch tok.kind {
	case tokIdent:
		return tok.text, nil
	case tokName:
		resolved, ok := p.params.ExpressionAttributeNames[tok.text]
		if !ok {
			return "", fmt.Errorf("expression attribute name %s is not defined", tok.text)
		}
		return resolved, nil
	}
	return "", fmt.Errorf("expected attribute name, got %s", tok)
}

func (p *parser) parseValue() (ast.KeyValue, error) {
	tok := p.next()
	if tok.kind != tokValue {
		return ast.KeyValue{}, fmt.Errorf("expected expression attribute value, got %s", tok)
	}
	av, ok := p.params.ExpressionAttributeValues[tok.text]
	if !ok {
		return ast.KeyValue{}, fmt.Errorf("expression attribute value %s is not defined", tok.text)
	}
	return toKeyValue(av)
}

func toKeyValue(attr types.AttributeValue) (ast.KeyValue, error) {
	switch v := attr.(type) {
	case *types.AttributeValueMemberS:
		return ast.KeyValue{Value: v.Value, Type: ast.STRING}, nil
	case *types.AttributeValueMemberN:
		return ast.KeyValue{Value: v.Value, Type: ast.NUMBER}, nil
	case *types.AttributeValueMemberB:
		return ast.KeyValue{Value: v.Value, Type: ast.BINARY}, nil
	}
	return ast.KeyValue{}, fmt.Errorf("unsupported attribute value type %T in key condition", attr)
}

// build assigns the parsed conditions to the partition and sort key.
func build(conds []rawCondition, keys table.PrimaryKeyDefinition) (*ast.KeyCondition, error) {
	if len(conds) > 2 {
		return nil, fmt.Errorf("key condition has %d conditions, at most 2 allowed", len(conds))
	}
	var kc ast.KeyCondition
	var havePK bool
	for _, c := range conds {
		switch c.name {
		case keys.PartitionKey.Name:
			if havePK {
				return nil, fmt.Errorf("partition key %q is constrained twice", c.name)
			}
			if c.op != string(ast.Equal) {
				return nil, fmt.Errorf("partition key %q only supports =, got %s", c.name, c.op)
			}
			if err := checkType(keys.PartitionKey, c.values); err != nil {
				return nil, err
			}
			kc.PartitionKeyCond = ast.PartitionKeyCondition{KeyName: c.name, Value: c.values[0]}
			havePK = true
		case keys.SortKey.Name:
			if !keys.HasSortKey() {
				return nil, fmt.Errorf("name %q is not a key in this table", c.name)
			}
			if kc.SortKeyCond != nil {
				return nil, fmt.Errorf("sort key %q is constrained twice", c.name)
			}
			if err := checkType(keys.SortKey, c.values); err != nil {
				return nil, err
			}
			sk, err := sortKeyCondition(c)
			if err != nil {
				return nil, err
			}
			kc.SortKeyCond = sk
		default:
			return nil, fmt.Errorf("name %q is not a key in this table", c.name)
		}
	}
	if !havePK {
		return nil, fmt.Errorf("key condition must constrain partition key %q", keys.PartitionKey.Name)
	}
	return &kc, nil
}

func sortKeyCondition(c rawCondition) (*ast.SortKeyCondition, error) {
	switch c.op {
	case "BETWEEN":
		lo, hi := c.values[0], c.values[1]
		n, err := lo.Compare(hi)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, fmt.Errorf("BETWEEN lower bound %v is greater than upper bound %v", lo, hi)
		}
		return &ast.SortKeyCondition{Between: &ast.KeyBetween{KeyName: c.name, Lower: lo, Upper: hi}}, nil
	case "begins_with":
		if c.values[0].Type == ast.NUMBER {
			return nil, fmt.Errorf("begins_with is not supported on number key %q", c.name)
		}
		return &ast.SortKeyCondition{BeginsWith: &ast.KeyBeginsWith{KeyName: c.name, Prefix: c.values[0]}}, nil
	default:
		return &ast.SortKeyCondition{Compare: &ast.KeyComparison{KeyName: c.name, Comp: ast.KeyComparator(c.op), Value: c.values[0]}}, nil
	}
}

func checkType(key table.KeyDef, values []ast.KeyValue) error {
	for _, v := range values {
		if string(v.Type) != string(key.Kind) {
			return fmt.Errorf("key %q is of type %s but condition value %v is %s", key.Name, key.Kind, v.Value, v.Type)
		}
	}
	return nil
}
