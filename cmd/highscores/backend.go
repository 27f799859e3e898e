package main

import (
	"context"
	"fmt"

	"github.com/acksell/highscores"
	"github.com/acksell/highscores/dynamodb/ddbiface"
	"github.com/acksell/highscores/dynamodb/ddbstore"
	"github.com/acksell/highscores/dynamodb/schema"
	"github.com/acksell/highscores/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// dynamoClient is what the commands need from a driver.
type dynamoClient interface {
	ddbiface.AWSDynamoClientV2
	ddbiface.TableCreator
}

// backend is an open driver together with the schema it was opened with.
type backend struct {
	registry *table.Registry
	client   dynamoClient
	close    func() error
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func (a *app) registry() (*table.Registry, error) {
	if a.cfg.Schema == "" {
		return highscores.NewRegistry()
	}
	s, err := schema.Load(a.cfg.Schema)
	if err != nil {
		return nil, err
	}
	return s.Registry()
}

func (a *app) openBackend(ctx context.Context) (*backend, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}

	if a.cfg.Local {
		store, err := ddbstore.New(ddbstore.StoreOptions{
			Path:   a.cfg.DB,
			Logger: ddbstore.NewSlogLogger(a.log),
		}, reg.Tables()...)
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		a.log.Debug("opened local store", "path", a.cfg.DB, "in_memory", a.cfg.DB == "")
		return &backend{registry: reg, client: store, close: store.Close}, nil
	}

	awsCfg, err := a.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if a.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(a.cfg.Endpoint)
		}
	})
	a.log.Debug("using DynamoDB", "region", awsCfg.Region, "endpoint", a.cfg.Endpoint)
	return &backend{registry: reg, client: client}, nil
}

// awsConfig loads the shared AWS configuration. A custom endpoint gets dummy
// static credentials, which is what DynamoDB Local expects.
func (a *app) awsConfig(ctx context.Context) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if a.cfg.Region != "" {
		opts = append(opts, config.WithRegion(a.cfg.Region))
	}
	if a.cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(a.cfg.Profile))
	}
	if a.cfg.Endpoint != "" && a.cfg.Profile == "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}
