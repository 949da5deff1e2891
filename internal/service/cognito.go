package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/cognimock/cognimock/internal/config"
	"github.com/cognimock/cognimock/internal/errs"
	"github.com/cognimock/cognimock/internal/ident"
	"github.com/cognimock/cognimock/internal/model"
	"github.com/cognimock/cognimock/internal/store"
)

// clientsDatasetName is the shared, pool-agnostic app-client dataset. Its
// file sits next to the pool files and is excluded from pool listings.
const clientsDatasetName = "clients"

// CognitoService is the registry over every pool in the data directory.
type CognitoService interface {
	// CreateUserPool creates a pool from p layered over the deployment and
	// built-in defaults, and returns the merged config.
	CreateUserPool(ctx context.Context, p model.UserPool) (*model.UserPool, error)
	// GetUserPool rehydrates the pool with the given id from disk.
	GetUserPool(ctx context.Context, id string) (UserPoolService, error)
	// DeleteUserPool removes the pool's backing file; absent pools are a
	// no-op.
	DeleteUserPool(ctx context.Context, id string) error
	// GetAppClient returns the client record, or (nil, nil) when absent.
	GetAppClient(ctx context.Context, clientID string) (*model.AppClient, error)
	// GetUserPoolForClientID rehydrates the pool owning the given client.
	// Fails with errs.ErrNotFound when no such client exists.
	GetUserPoolForClientID(ctx context.Context, clientID string) (UserPoolService, error)
	// ListUserPools returns the config of every pool found in the data
	// directory, in directory order.
	ListUserPools(ctx context.Context) ([]model.UserPool, error)
}

// CognitoServiceImpl implements CognitoService. Pools are not kept resident:
// every lookup reopens the pool's dataset, so the data directory stays the
// sole source of truth.
type CognitoServiceImpl struct {
	cfg     config.Config
	stores  store.Factory
	pools   UserPoolServiceFactory
	clients store.Dataset
	log     *zap.Logger
}

var _ CognitoService = (*CognitoServiceImpl)(nil)

// NewCognitoService opens the shared clients dataset and wires the registry.
func NewCognitoService(ctx context.Context, cfg config.Config, stores store.Factory, pools UserPoolServiceFactory, log *zap.Logger) (*CognitoServiceImpl, error) {
	clients, err := stores.Create(ctx, clientsDatasetName, map[string]any{
		"Clients": map[string]any{},
	})
	if err != nil {
		return nil, fmt.Errorf("open clients dataset: %w", err)
	}
	return &CognitoServiceImpl{
		cfg:     cfg,
		stores:  stores,
		pools:   pools,
		clients: clients,
		log:     log,
	}, nil
}

// mergedOptions layers, in increasing precedence: built-in defaults, the
// deployment-wide defaults, and the caller's requested pool. The overlay is a
// shallow top-level field override.
func (s *CognitoServiceImpl) mergedOptions(over model.UserPool) model.UserPool {
	return overlayPool(overlayPool(builtinDefaults(), s.cfg.UserPoolDefaults), over)
}

// CreateUserPool generates an id when the request carries none, completes the
// requested schema with the built-in attributes, merges the option layers,
// and delegates to the pool factory.
func (s *CognitoServiceImpl) CreateUserPool(ctx context.Context, p model.UserPool) (*model.UserPool, error) {
	if p.ID == "" {
		id, err := ident.NewPoolID(s.cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("create user pool: %w", err)
		}
		p.ID = id
	}
	p.SchemaAttributes = mergeSchemaAttributes(p.SchemaAttributes)

	svc, err := s.pools.Create(ctx, s.clients, s.mergedOptions(p))
	if err != nil {
		return nil, err
	}
	cfg := svc.Config()
	s.log.Info("user pool created", zap.String("pool", cfg.ID))
	return &cfg, nil
}

// GetUserPool reopens a previously created pool. Only the id is overlaid on
// the defaults; the stored options win inside the factory.
func (s *CognitoServiceImpl) GetUserPool(ctx context.Context, id string) (UserPoolService, error) {
	return s.pools.Create(ctx, s.clients, s.mergedOptions(model.UserPool{ID: id}))
}

// DeleteUserPool removes the pool's dataset from the data directory.
func (s *CognitoServiceImpl) DeleteUserPool(ctx context.Context, id string) error {
	if id == clientsDatasetName {
		return fmt.Errorf("delete user pool: %q is reserved", clientsDatasetName)
	}
	if err := s.stores.Remove(ctx, id); err != nil {
		return err
	}
	s.log.Info("user pool deleted", zap.String("pool", id))
	return nil
}

// GetAppClient looks up the shared clients dataset by client id.
func (s *CognitoServiceImpl) GetAppClient(ctx context.Context, clientID string) (*model.AppClient, error) {
	return store.GetAs[model.AppClient](ctx, s.clients, "Clients", clientID)
}

// GetUserPoolForClientID resolves the app client first, then rehydrates the
// owning pool from the client's back-reference.
func (s *CognitoServiceImpl) GetUserPoolForClientID(ctx context.Context, clientID string) (UserPoolService, error) {
	c, err := s.GetAppClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("app client %s: %w", clientID, errs.ErrNotFound)
	}
	return s.GetUserPool(ctx, c.UserPoolID)
}

// ListUserPools scans the data directory for pool files and rehydrates each.
// O(number of pools) by design: the directory is the index, and caching one
// in memory would go stale across restarts.
func (s *CognitoServiceImpl) ListUserPools(ctx context.Context) ([]model.UserPool, error) {
	entries, err := os.ReadDir(s.cfg.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list user pools: %w", err)
	}

	var pools []model.UserPool
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), store.Suffix) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), store.Suffix)
		if id == clientsDatasetName {
			continue
		}
		svc, err := s.GetUserPool(ctx, id)
		if err != nil {
			return nil, err
		}
		pools = append(pools, svc.Config())
	}
	return pools, nil
}
