// Package service contains the user-pool service and the pool registry.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognimock/cognimock/internal/clock"
	"github.com/cognimock/cognimock/internal/errs"
	"github.com/cognimock/cognimock/internal/ident"
	"github.com/cognimock/cognimock/internal/model"
	"github.com/cognimock/cognimock/internal/store"
)

// defaultRefreshTokenValidity is the observed default for new app clients.
const defaultRefreshTokenValidity = 30

// UserPoolService owns one pool's users, groups, and app-client creation.
type UserPoolService interface {
	// Config returns the pool's merged options, including defaulted schema.
	Config() model.UserPool

	// CreateAppClient registers a new app client for this pool in the
	// shared clients dataset.
	CreateAppClient(ctx context.Context, name string) (*model.AppClient, error)
	// ListAppClients returns the app clients registered for this pool.
	ListAppClients(ctx context.Context) ([]*model.AppClient, error)

	// CreateUser creates a new user, generating a sub attribute when the
	// caller supplies none. Fails with errs.ErrAlreadyExists on a taken
	// username.
	CreateUser(ctx context.Context, username, password string, attrs model.AttributeListType) (*model.User, error)
	// SaveUser upserts the full user record; no merging.
	SaveUser(ctx context.Context, u *model.User) error
	// DeleteUser removes the user by username.
	DeleteUser(ctx context.Context, u *model.User) error
	// GetUserByUsername resolves a username or enabled alias attribute to a
	// user. Returns (nil, nil) when nothing matches.
	GetUserByUsername(ctx context.Context, usernameOrAlias string) (*model.User, error)
	// ListUsers returns all users in storage order.
	ListUsers(ctx context.Context) ([]*model.User, error)

	// SaveGroup upserts the full group record.
	SaveGroup(ctx context.Context, g *model.Group) error
	// GetGroupByGroupName returns the group or (nil, nil) when absent.
	GetGroupByGroupName(ctx context.Context, name string) (*model.Group, error)
	// DeleteGroup removes the group by name.
	DeleteGroup(ctx context.Context, g *model.Group) error
	// ListGroups returns all groups in storage order.
	ListGroups(ctx context.Context) ([]*model.Group, error)
}

// UserPoolServiceImpl implements UserPoolService on one pool dataset plus
// the shared clients dataset.
type UserPoolServiceImpl struct {
	clock   clock.Clock
	clients store.Dataset
	dataset store.Dataset
	config  model.UserPool
	log     *zap.Logger
}

var _ UserPoolService = (*UserPoolServiceImpl)(nil)

// Config returns the pool options loaded when the service was constructed.
// The stored Options block wins over whatever the caller passed in, so a
// rehydrated pool reports the config it was created with.
func (s *UserPoolServiceImpl) Config() model.UserPool { return s.config }

// CreateAppClient generates a client id, stamps it via the injected clock,
// and persists the record in the shared clients dataset.
func (s *UserPoolServiceImpl) CreateAppClient(ctx context.Context, name string) (*model.AppClient, error) {
	id, err := ident.NewClientID()
	if err != nil {
		return nil, fmt.Errorf("create app client: %w", err)
	}
	now := s.clock.Now()
	c := &model.AppClient{
		ClientID:             id,
		ClientName:           name,
		UserPoolID:           s.config.ID,
		RefreshTokenValidity: defaultRefreshTokenValidity,
		CreationDate:         now,
		LastModifiedDate:     now,
	}
	if err := s.clients.Set(ctx, []string{"Clients", id}, c); err != nil {
		return nil, err
	}
	s.log.Debug("app client created",
		zap.String("pool", s.config.ID),
		zap.String("clientId", id),
		zap.String("clientName", name),
	)
	return c, nil
}

// ListAppClients scans the shared clients dataset and keeps this pool's.
func (s *UserPoolServiceImpl) ListAppClients(ctx context.Context) ([]*model.AppClient, error) {
	items, err := store.Items(ctx, s.clients, "Clients")
	if err != nil {
		return nil, err
	}
	clients := make([]*model.AppClient, 0, len(items))
	for _, it := range items {
		var c model.AppClient
		if err := json.Unmarshal(it.Value, &c); err != nil {
			return nil, fmt.Errorf("decode app client %s: %w", it.Key, err)
		}
		if c.UserPoolID == s.config.ID {
			clients = append(clients, &c)
		}
	}
	return clients, nil
}

// CreateUser builds a new user record the way administrative creation does:
// generated sub when absent, FORCE_CHANGE_PASSWORD status, enabled, clock
// timestamps.
func (s *UserPoolServiceImpl) CreateUser(ctx context.Context, username, password string, attrs model.AttributeListType) (*model.User, error) {
	if username == "" {
		return nil, fmt.Errorf("create user: empty username")
	}
	existing, err := store.GetAs[model.User](ctx, s.dataset, "Users", username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user %s: %w", username, errs.ErrAlreadyExists)
	}

	userAttrs := make(model.AttributeListType, 0, len(attrs)+1)
	if !model.AttributesInclude("sub", attrs) {
		sub, err := ident.NewSub()
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		userAttrs = append(userAttrs, model.AttributeType{Name: "sub", Value: sub})
	}
	userAttrs = append(userAttrs, attrs...)

	now := s.clock.Now()
	u := &model.User{
		Username:             username,
		Password:             password,
		Attributes:           userAttrs,
		UserStatus:           model.StatusForceChangePassword,
		Enabled:              true,
		UserCreateDate:       now,
		UserLastModifiedDate: now,
	}
	if err := s.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SaveUser upserts the full record under Users.<Username>.
func (s *UserPoolServiceImpl) SaveUser(ctx context.Context, u *model.User) error {
	s.log.Debug("saving user", zap.String("pool", s.config.ID), zap.String("username", u.Username))
	return s.dataset.Set(ctx, []string{"Users", u.Username}, u)
}

// DeleteUser removes the record under Users.<Username>.
func (s *UserPoolServiceImpl) DeleteUser(ctx context.Context, u *model.User) error {
	s.log.Debug("deleting user", zap.String("pool", s.config.ID), zap.String("username", u.Username))
	return s.dataset.Delete(ctx, "Users", u.Username)
}

// GetUserByUsername resolves in order: exact username, sub attribute, then
// email and phone_number but only when the pool enables them as aliases.
// First match wins.
func (s *UserPoolServiceImpl) GetUserByUsername(ctx context.Context, usernameOrAlias string) (*model.User, error) {
	u, err := store.GetAs[model.User](ctx, s.dataset, "Users", usernameOrAlias)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	aliases := []string{"sub"}
	if s.config.UsernameAttributeEnabled("email") {
		aliases = append(aliases, "email")
	}
	if s.config.UsernameAttributeEnabled("phone_number") {
		aliases = append(aliases, "phone_number")
	}
	for _, attr := range aliases {
		for _, u := range users {
			if model.AttributesIncludeMatch(attr, usernameOrAlias, u.Attributes) {
				return u, nil
			}
		}
	}
	return nil, nil
}

// ListUsers returns every user in the pool in storage order.
func (s *UserPoolServiceImpl) ListUsers(ctx context.Context) ([]*model.User, error) {
	items, err := store.Items(ctx, s.dataset, "Users")
	if err != nil {
		return nil, err
	}
	users := make([]*model.User, 0, len(items))
	for _, it := range items {
		var u model.User
		if err := json.Unmarshal(it.Value, &u); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", it.Key, err)
		}
		users = append(users, &u)
	}
	return users, nil
}

// SaveGroup upserts the full record under Groups.<GroupName>.
func (s *UserPoolServiceImpl) SaveGroup(ctx context.Context, g *model.Group) error {
	s.log.Debug("saving group", zap.String("pool", s.config.ID), zap.String("group", g.GroupName))
	return s.dataset.Set(ctx, []string{"Groups", g.GroupName}, g)
}

// GetGroupByGroupName returns the named group, or (nil, nil) when absent.
func (s *UserPoolServiceImpl) GetGroupByGroupName(ctx context.Context, name string) (*model.Group, error) {
	return store.GetAs[model.Group](ctx, s.dataset, "Groups", name)
}

// DeleteGroup removes the record under Groups.<GroupName>.
func (s *UserPoolServiceImpl) DeleteGroup(ctx context.Context, g *model.Group) error {
	s.log.Debug("deleting group", zap.String("pool", s.config.ID), zap.String("group", g.GroupName))
	return s.dataset.Delete(ctx, "Groups", g.GroupName)
}

// ListGroups returns every group in the pool in storage order.
func (s *UserPoolServiceImpl) ListGroups(ctx context.Context) ([]*model.Group, error) {
	items, err := store.Items(ctx, s.dataset, "Groups")
	if err != nil {
		return nil, err
	}
	groups := make([]*model.Group, 0, len(items))
	for _, it := range items {
		var g model.Group
		if err := json.Unmarshal(it.Value, &g); err != nil {
			return nil, fmt.Errorf("decode group %s: %w", it.Key, err)
		}
		groups = append(groups, &g)
	}
	return groups, nil
}

// UserPoolServiceFactory constructs pool services bound to the shared
// clients dataset.
type UserPoolServiceFactory interface {
	// Create opens (or seeds) the pool's dataset and wraps it in a service.
	Create(ctx context.Context, clients store.Dataset, options model.UserPool) (UserPoolService, error)
}

// UserPoolServiceFactoryImpl wires the clock and store factory into new
// pool services. Construction does no I/O; Create does.
type UserPoolServiceFactoryImpl struct {
	clock  clock.Clock
	stores store.Factory
	log    *zap.Logger
}

var _ UserPoolServiceFactory = (*UserPoolServiceFactoryImpl)(nil)

// NewUserPoolServiceFactory constructs the factory with its dependencies.
func NewUserPoolServiceFactory(clk clock.Clock, stores store.Factory, log *zap.Logger) *UserPoolServiceFactoryImpl {
	return &UserPoolServiceFactoryImpl{clock: clk, stores: stores, log: log}
}

// Create opens the dataset named after the pool id, seeding a fresh pool
// document when absent. Stored options take precedence over the passed
// options so reopened pools keep their original config.
func (f *UserPoolServiceFactoryImpl) Create(ctx context.Context, clients store.Dataset, options model.UserPool) (UserPoolService, error) {
	if options.ID == "" {
		return nil, fmt.Errorf("user pool service: empty pool id")
	}
	ds, err := f.stores.Create(ctx, options.ID, map[string]any{
		"Options": options,
		"Users":   map[string]any{},
	})
	if err != nil {
		return nil, err
	}

	stored, err := store.GetAs[model.UserPool](ctx, ds, "Options")
	if err != nil {
		return nil, err
	}
	cfg := options
	if stored != nil {
		cfg = *stored
	}

	return &UserPoolServiceImpl{
		clock:   f.clock,
		clients: clients,
		dataset: ds,
		config:  cfg,
		log:     f.log,
	}, nil
}
