package mongodb

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-export/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        "mongodb",
			DisplayName: "MongoDB",
			Description: "Connect to MongoDB 4.4+ and Atlas",
		},
		Factory: func(ctx context.Context, config map[string]any, logger *zap.Logger) (datasource.ConnectionTester, error) {
			cfg, err := FromMap(config)
			if err != nil {
				return nil, err
			}
			adapter, err := NewAdapter(ctx, cfg, logger)
			if err != nil {
				return nil, err
			}
			return adapter, nil
		},
		DocumentReaderFactory: func(ctx context.Context, config map[string]any, logger *zap.Logger) (datasource.DocumentReader, error) {
			cfg, err := FromMap(config)
			if err != nil {
				return nil, err
			}
			adapter, err := NewAdapter(ctx, cfg, logger)
			if err != nil {
				return nil, err
			}
			return adapter, nil
		},
	})
}
