package ddbsdk

import (
	"context"
	"errors"
	"fmt"

	"github.com/acksell/highscores/dynamodb/ddbiface"
	"github.com/acksell/highscores/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrTableExists is returned by CreateTable when the table already exists.
var ErrTableExists = errors.New("table already exists")

// CreateTable creates the table described by def, including its indexes.
func CreateTable(ctx context.Context, creator ddbiface.TableCreator, def table.TableDefinition) error {
	_, err := creator.CreateTable(ctx, def.CreateTableInput())
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return fmt.Errorf("create table %s: %w: %w", def.Name, ErrTableExists, err)
		}
		return fmt.Errorf("create table %s: %w", def.Name, err)
	}
	return nil
}
